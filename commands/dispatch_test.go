package commands

import (
	"strings"
	"testing"
)

func TestDispatchUnknownCommand(t *testing.T) {
	core, recorder := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)

	if quit := Dispatch(core, ann, "/frobnicate"); quit {
		t.Fatalf("unknown command terminated the session")
	}
	if got := recorder.last("Ann"); got != "unknown command" {
		t.Fatalf("notice = %q", got)
	}
}

func TestDispatchResolvesAliases(t *testing.T) {
	core, recorder := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	newTestPlayer(t, core, "Bob", false)

	Dispatch(core, ann, "/m Bob hi there")
	core.Loop.Flush()
	if got := recorder.last("Bob"); got != "from Ann: hi there" {
		t.Fatalf("alias dispatch failed: %q", got)
	}
}

func TestDispatchEmptyLine(t *testing.T) {
	core, _ := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	if quit := Dispatch(core, ann, "/"); quit {
		t.Fatalf("bare slash terminated the session")
	}
}

func TestMsgUsage(t *testing.T) {
	core, recorder := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	Dispatch(core, ann, "/msg Bob")
	if got := recorder.last("Ann"); !strings.HasPrefix(got, "usage: /msg") {
		t.Fatalf("usage notice = %q", got)
	}
}

func TestReplyWithoutHistory(t *testing.T) {
	core, recorder := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	Dispatch(core, ann, "/reply hello?")
	if got := recorder.last("Ann"); got != "nobody to reply to" {
		t.Fatalf("notice = %q", got)
	}
}

func TestReplyContinuesConversation(t *testing.T) {
	core, recorder := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	bob := newTestPlayer(t, core, "Bob", false)

	Dispatch(core, ann, "/msg Bob ping")
	Dispatch(core, bob, "/reply pong")
	core.Loop.Flush()
	if got := recorder.last("Ann"); got != "from Bob: pong" {
		t.Fatalf("reply did not reach Ann: %q", got)
	}
}

func TestQuitTerminates(t *testing.T) {
	core, _ := newTestCore(t)
	ann := newTestPlayer(t, core, "Ann", false)
	if quit := Dispatch(core, ann, "/quit"); !quit {
		t.Fatalf("quit did not terminate")
	}
}
