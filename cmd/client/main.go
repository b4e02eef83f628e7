package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/crossword/internal/adapters/webapi"
	"github.com/kiryu-dev/crossword/internal/config"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/kiryu-dev/crossword/pkg/utils"
	"github.com/pkg/errors"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server websocket address")
	status := flag.Bool("status", false, "print server health and open matches, then exit")
	cfgPath := flag.String("config", "", "server config to take the response separators from")
	flag.Parse()
	proto, err := loadProtocol(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *status {
		if err := printStatus(*addr); err != nil {
			log.Fatal(err)
		}
		return
	}
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/play"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial: " + err.Error())
	}
	defer func() {
		_ = conn.Close()
	}()
	c := newClient(conn, proto)
	go func() {
		if err := c.sendCommands(); err != nil {
			log.Println(err)
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()
	if err := c.printResponses(); err != nil {
		log.Fatal(err)
	}
}

// loadProtocol returns the separators of the server config at path, the defaults if path is empty.
func loadProtocol(path string) (domain.Protocol, error) {
	if path == "" {
		return domain.DefaultProtocol(), nil
	}
	cfg, err := config.New(path)
	if err != nil {
		return domain.Protocol{}, errors.WithMessage(err, "load config")
	}
	return cfg.Protocol, nil
}

func printStatus(addr string) error {
	repo := webapi.New("http://" + addr)
	health, err := repo.HealthCheck(context.Background())
	if err != nil {
		return errors.WithMessage(err, "health check")
	}
	fmt.Printf("puzzles: %d, players: %d, matches: %d (%d waiting), connections: %d\n",
		health.Puzzles, health.Players, health.Matches, health.Waiting, health.Connections)
	matches, err := repo.AvailableMatches(context.Background())
	if err != nil {
		return errors.WithMessage(err, "list matches")
	}
	for _, m := range matches {
		fmt.Printf("  %s  %s  %q\n", m.MatchID, m.Puzzle, m.Description)
	}
	return nil
}

type client struct {
	conn    *websocket.Conn
	scanner *bufio.Scanner
	proto   domain.Protocol
}

func newClient(conn *websocket.Conn, proto domain.Protocol) *client {
	return &client{
		conn:    conn,
		scanner: bufio.NewScanner(os.Stdin),
		proto:   proto,
	}
}

// sendCommands forwards stdin lines until EOF or QUIT.
func (c *client) sendCommands() error {
	for c.scanner.Scan() {
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		err := c.conn.WriteJSON(domain.Message{
			Type:    domain.CommandMessage,
			Payload: domain.LinePayload{Line: line},
		})
		if err != nil {
			return errors.WithMessage(err, "write json msg")
		}
		if fields := strings.Fields(line); len(fields) > 1 && strings.EqualFold(fields[1], "QUIT") {
			return nil
		}
	}
	return c.scanner.Err()
}

func (c *client) printResponses() error {
	for {
		msg := new(domain.Message)
		if err := c.conn.ReadJSON(msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				return nil
			}
			return errors.WithMessage(err, "read json msg")
		}
		v, err := utils.DecodePayload[domain.LinePayload](msg.Payload)
		if err != nil {
			return errors.WithMessage(err, "unmarshal json to 'LinePayload' type")
		}
		c.print(v.Line)
	}
}

func (c *client) print(line string) {
	for _, l := range c.render(line) {
		fmt.Println(l)
	}
}

// render lays a response out one entry per line with its fields separated by " | ".
func (c *client) render(line string) []string {
	valid, command, sections := c.proto.Split(line)
	mark := "ok"
	if !valid {
		mark = "error"
	}
	lines := []string{fmt.Sprintf("[%s] %s", mark, command)}
	for _, section := range sections {
		if section == "" {
			continue
		}
		for _, entry := range strings.Split(section, c.proto.EntrySeparator) {
			lines = append(lines, "  "+strings.Join(strings.Split(entry, c.proto.WordSeparator), " | "))
		}
	}
	return lines
}
