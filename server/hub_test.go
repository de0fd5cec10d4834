package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/halissimsek/edit-text/ot"
	"github.com/halissimsek/edit-text/store"
	"github.com/halissimsek/edit-text/synclog"
	"github.com/halissimsek/edit-text/text"
)

func TestHub_CreateSessionOnJoin(t *testing.T) {
	st := store.NewMemoryStore()
	engine := &ot.JupiterEngine{}
	hub := NewHub(st, engine, synclog.Nop{})
	go hub.Run()

	c := mockClient("c1")
	c.hub = hub
	hub.joinDoc <- joinRequest{client: c, docID: "new-doc"}

	// Wait a bit for the async join to be processed
	time.Sleep(100 * time.Millisecond)

	// Client should receive a doc message
	select {
	case data := <-c.send:
		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != MsgDoc {
			t.Errorf("expected doc, got %q", msg.Type)
		}
		if msg.DocID != "new-doc" {
			t.Errorf("docId = %q, want %q", msg.DocID, "new-doc")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}

	// Session should exist
	s := hub.GetSession("new-doc")
	if s == nil {
		t.Error("session not created")
	}
}

func TestHub_JoinExistingDoc(t *testing.T) {
	st := store.NewMemoryStore()
	st.Create(ctx(), "existing", plainRuns("hello world"))
	engine := &ot.JupiterEngine{}
	hub := NewHub(st, engine, synclog.Nop{})
	go hub.Run()

	c := mockClient("c1")
	c.hub = hub
	hub.joinDoc <- joinRequest{client: c, docID: "existing"}

	time.Sleep(100 * time.Millisecond)

	select {
	case data := <-c.send:
		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Content != "hello world" {
			t.Errorf("content = %q, want %q", msg.Content, "hello world")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
}

func TestHub_LoadsStyledRunsAndHistory(t *testing.T) {
	st := store.NewMemoryStore()
	bold := text.NewStyleMap(text.StyleBold)
	runs := []text.DocString{
		text.NewDocString("see "),
		text.NewStyledDocString("this", bold),
	}
	st.Create(ctx(), "styled", nil)
	st.UpdateRuns(ctx(), "styled", runs, 1)
	st.AppendOperation(ctx(), "styled", ot.NewInsert(0, text.NewDocString("see this"), 0), 1)

	hub := NewHub(st, &ot.JupiterEngine{}, synclog.Nop{})
	go hub.Run()

	c := mockClient("c1")
	c.hub = hub
	hub.joinDoc <- joinRequest{client: c, docID: "styled"}

	msg := recvMsg(t, c)
	if msg.Type != MsgDoc {
		t.Fatalf("expected doc, got %q", msg.Type)
	}
	if msg.Content != "see this" {
		t.Errorf("content = %q, want %q", msg.Content, "see this")
	}
	if msg.Revision != 1 {
		t.Errorf("revision = %d, want 1", msg.Revision)
	}
	if len(msg.Runs) != 2 || !msg.Runs[1].Styles().Equal(bold) {
		t.Errorf("runs = %v, want plain + bold pair", msg.Runs)
	}

	s := hub.GetSession("styled")
	if s == nil {
		t.Fatal("session not created")
	}
	if len(s.doc.History) != 1 {
		t.Errorf("history len = %d, want 1", len(s.doc.History))
	}
}
