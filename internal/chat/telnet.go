package chat

import (
	"bufio"
	"bytes"
	"net"
	"sync"
)

const (
	telnetIAC  byte = 255
	telnetDONT byte = 254
	telnetDO   byte = 253
	telnetWONT byte = 252
	telnetWILL byte = 251
	telnetSB   byte = 250
	telnetSE   byte = 240
)

const (
	telnetOptEcho       byte = 1
	telnetOptSuppressGA byte = 3
	telnetOptLineMode   byte = 34
)

// TelnetSession wraps a network connection with enough telnet awareness for
// a line-based chat client: option refusal, IAC escaping, and CRLF handling.
type TelnetSession struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

func NewTelnetSession(conn net.Conn) *TelnetSession {
	s := &TelnetSession{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	_ = s.writeCommand(telnetWILL, telnetOptSuppressGA)
	_ = s.writeCommand(telnetWONT, telnetOptEcho)
	_ = s.writeCommand(telnetDONT, telnetOptLineMode)
	return s
}

func (s *TelnetSession) writeCommand(cmd, opt byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write([]byte{telnetIAC, cmd, opt})
	return err
}

func (s *TelnetSession) WriteString(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.conn.Write(translateForTelnet(msg))
	return err
}

func translateForTelnet(msg string) []byte {
	var buf bytes.Buffer
	var prev byte
	for i := 0; i < len(msg); i++ {
		b := msg[i]
		switch b {
		case '\n':
			if prev != '\r' {
				buf.WriteByte('\r')
			}
			buf.WriteByte('\n')
		case telnetIAC:
			buf.WriteByte(telnetIAC)
			buf.WriteByte(telnetIAC)
		default:
			buf.WriteByte(b)
		}
		prev = b
	}
	return buf.Bytes()
}

// ReadLine reads one input line, filtering telnet negotiation in-band.
func (s *TelnetSession) ReadLine() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r':
			if next, err := s.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = s.reader.ReadByte()
			}
			return buf.String(), nil
		case '\n':
			return buf.String(), nil
		case 0x08, 0x7f:
			bs := buf.Bytes()
			if len(bs) > 0 {
				buf.Truncate(len(bs) - 1)
			}
		case 0x00:
			// ignore NULs
		case telnetIAC:
			if err := s.handleIAC(&buf); err != nil {
				return "", err
			}
		default:
			buf.WriteByte(b)
		}
	}
}

func (s *TelnetSession) handleIAC(buf *bytes.Buffer) error {
	cmd, err := s.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case telnetIAC:
		buf.WriteByte(telnetIAC)
	case telnetDO, telnetWILL:
		opt, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		// Decline everything except the options we offered ourselves.
		if cmd == telnetDO && opt == telnetOptSuppressGA {
			return nil
		}
		if cmd == telnetDO {
			return s.writeCommand(telnetWONT, opt)
		}
		return s.writeCommand(telnetDONT, opt)
	case telnetDONT, telnetWONT:
		if _, err := s.reader.ReadByte(); err != nil {
			return err
		}
	case telnetSB:
		return s.skipSubnegotiation()
	}
	return nil
}

func (s *TelnetSession) skipSubnegotiation() error {
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if b != telnetIAC {
			continue
		}
		esc, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if esc == telnetSE {
			return nil
		}
	}
}

func (s *TelnetSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
