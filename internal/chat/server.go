package chat

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

// Dispatcher executes a slash command for the connected player.
// Returning true indicates the connection should terminate.
type Dispatcher func(*Core, *Player, string) bool

var (
	netListenFunc = net.Listen
	acceptSleep   = time.Sleep
)

// ListenAndServe accepts telnet connections on the core's configured address
// and serves each one until the listener fails.
func ListenAndServe(core *Core, dispatcher Dispatcher) error {
	if dispatcher == nil {
		return fmt.Errorf("dispatcher must not be nil")
	}
	ln, err := netListenFunc("tcp", core.Config.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Printf("chat listening on %s (telnet + ANSI ready)", ln.Addr())

	go core.Loop.Run()
	defer core.Close()

	return acceptConnections(ln, func(conn net.Conn) {
		go handleConn(conn, core, dispatcher)
	})
}

func handleConn(conn net.Conn, core *Core, dispatcher Dispatcher) {
	session := NewTelnetSession(conn)
	defer session.Close()
	username, isAdmin, err := login(session, core.Accounts)
	if err != nil {
		return
	}

	player := &Player{
		Name:     username,
		Account:  username,
		Session:  session,
		Output:   make(chan string, 32),
		Alive:    true,
		IsAdmin:  isAdmin,
		JoinedAt: time.Now().UTC(),
	}
	if err := core.AddPlayer(player); err != nil {
		_ = session.WriteString(Ansi(StyleText("\r\nThat account is already connected.\r\n", AnsiYellow)))
		return
	}
	defer core.RemovePlayer(player)

	if err := core.Accounts.RecordLogin(username, time.Now().UTC()); err != nil {
		log.Printf("record login for %s: %v", username, err)
	}

	go func() {
		for out := range player.Output {
			_ = session.WriteString("\r\n" + out)
		}
	}()
	defer func() {
		player.Alive = false
		close(player.Output)
	}()

	core.Tell(player, "session.welcome", map[string]string{"player": player.Name})
	core.Loop.Submit(func() {
		for _, other := range core.Players() {
			if other != player {
				core.Tell(other, "session.join", map[string]string{"player": player.Name})
			}
		}
	})

	for {
		line, err := session.ReadLine()
		if err != nil {
			break
		}
		line = Trim(line)
		if line == "" {
			continue
		}
		if !player.allowInput(time.Now()) {
			player.Output <- Ansi(StyleText("You are sending messages too quickly. Please wait.", AnsiYellow))
			continue
		}
		if !player.Alive {
			break
		}
		if strings.HasPrefix(line, "/") {
			if quit := dispatcher(core, player, line); quit {
				break
			}
			continue
		}
		_ = core.Pipeline.ProcessChat(player, line)
	}

	player.Alive = false
	core.RemovePlayer(player)
	core.Loop.Submit(func() {
		for _, other := range core.Players() {
			core.Tell(other, "session.leave", map[string]string{"player": player.Name})
		}
	})
}

const (
	acceptBackoffStart = 50 * time.Millisecond
	acceptBackoffMax   = time.Second
)

func acceptConnections(ln net.Listener, handle func(net.Conn)) error {
	backoff := acceptBackoffStart
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isTemporaryAcceptError(err) {
				log.Printf("temporary error accepting connection: %v; retrying in %s", err, backoff)
				acceptSleep(backoff)
				backoff *= 2
				if backoff > acceptBackoffMax {
					backoff = acceptBackoffMax
				}
				continue
			}
			return err
		}
		backoff = acceptBackoffStart
		handle(conn)
	}
}

func isTemporaryAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() || ne.Temporary() {
			return true
		}
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
