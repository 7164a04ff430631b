package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dashanwesha/Code-Editor/internal/domain"
)

var (
	addr = flag.String("addr", "localhost:5000", "http service address")
	room = flag.String("room", "default", "room to join")
	name = flag.String("name", "", "display name")
)

func main() {
	flag.Parse()

	userName := *name
	if userName == "" {
		userName = promptName()
	}

	conn := connectWebSocket()
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go readEvents(conn, done)

	// Join the room before relaying anything.
	send(conn, domain.Event{Type: domain.EventJoin, Room: *room, UserName: userName})

	fmt.Println("Type code lines to share (/lang <language>, /users, /leave, /quit):")
	writeEvents(conn, interrupt, done)
}

func promptName() string {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Enter your display name: ")
	scanner.Scan()
	return scanner.Text()
}

func connectWebSocket() *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	log.Println("Connected to WebSocket server.")
	return conn
}

func send(conn *websocket.Conn, ev domain.Event) {
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("Error sending event: %v", err)
	}
}

func readEvents(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var ev domain.Event
		if err := conn.ReadJSON(&ev); err != nil {
			log.Printf("Error reading event: %v", err)
			return
		}

		switch ev.Type {
		case domain.EventUserJoined:
			fmt.Printf(">> room members: %s\n", strings.Join(ev.Members, ", "))
		case domain.EventCodeUpdate:
			fmt.Printf(">> code: %s\n", ev.Code)
		case domain.EventUserTyping:
			fmt.Printf(">> %s is typing...\n", ev.UserName)
		case domain.EventLanguageUpdate:
			fmt.Printf(">> language: %s\n", ev.Language)
		case domain.EventActiveUsers:
			fmt.Printf(">> active users: %s\n", strings.Join(ev.Members, ", "))
		}
	}
}

func writeEvents(conn *websocket.Conn, interrupt chan os.Signal, done chan struct{}) {
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
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch {
			case line == "/quit":
				closeGracefully(conn, done)
				return
			case line == "/leave":
				send(conn, domain.Event{Type: domain.EventLeaveRoom})
			case line == "/users":
				send(conn, domain.Event{Type: domain.EventActiveUsers})
			case strings.HasPrefix(line, "/lang "):
				send(conn, domain.Event{Type: domain.EventLanguageChange, Language: strings.TrimPrefix(line, "/lang ")})
			case line != "":
				send(conn, domain.Event{Type: domain.EventCodeChange, Code: line})
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			closeGracefully(conn, done)
			return
		case <-done:
			return
		}
	}
}

func closeGracefully(conn *websocket.Conn, done chan struct{}) {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		log.Printf("Error sending close message: %v", err)
		return
	}
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
