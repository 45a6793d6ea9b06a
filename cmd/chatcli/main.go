// Command chatcli is a line-based terminal client for a Global Chat server.
//
//	chatcli -url ws://localhost:8080/ws -name alice
//
// Every line typed on stdin is sent as a chat message; /quit exits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

type serverFrame struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Count    int    `json:"count"`
}

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "chat server WebSocket URL")
	name := flag.String("name", "", "display name to register")
	origin := flag.String("origin", "http://localhost:8080", "Origin header sent during the handshake")
	flag.Parse()

	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(2)
	}

	if err := run(*url, *origin, *name); err != nil {
		color.Red.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func run(url, origin, name string) error {
	header := http.Header{}
	header.Set("Origin", origin)

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "register", "username": name}); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- readLoop(conn)
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "/quit" {
				return conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if line == "" {
				continue
			}
			if err := conn.WriteJSON(map[string]string{"type": "chat", "message": line}); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func readLoop(conn *websocket.Conn) error {
	for {
		var frame serverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		render(frame)
	}
}

func render(f serverFrame) {
	switch f.Type {
	case "register_success":
		color.Green.Printf("[registered] %s (%s)\n", f.Username, f.UserID)
	case "system":
		color.Yellow.Printf("[system] %s\n", f.Message)
	case "chat":
		color.Cyan.Printf("%s: ", f.Username)
		fmt.Println(f.Message)
	case "online_count":
		color.Gray.Printf("[online] %d\n", f.Count)
	default:
		color.Gray.Printf("[unknown %q]\n", f.Type)
	}
}
