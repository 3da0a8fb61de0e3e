package message

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

func TestMessageJSON(t *testing.T) {
	messageJSONTests := []struct {
		m Message
		j string
	}{
		{
			j: `{}`,
		},
		{
			m: Message{Event: AskConfig, ID: 1},
			j: `{"event":"c:ask:config","id":1}`,
		},
		{
			m: Message{Event: AskJoin, ID: 4, Args: []json.RawMessage{json.RawMessage(`{"name":"Bob","gameId":"7F3A"}`)}},
			j: `{"event":"c:ask:menu/join","id":4,"args":[{"name":"Bob","gameId":"7F3A"}]}`,
		},
		{
			m: Message{Ack: 4, Args: []json.RawMessage{json.RawMessage(`0`)}},
			j: `{"ack":4,"args":[0]}`,
		},
		{
			m: Message{Ack: 9, Error: "no images to choose from"},
			j: `{"ack":9,"error":"no images to choose from"}`,
		},
	}
	for i, test := range messageJSONTests {
		got, err := json.Marshal(test.m)
		switch {
		case err != nil:
			t.Errorf("Test %v: unwanted error marshalling: %v", i, err)
		case test.j != string(got):
			t.Errorf("Test %v: json not equal:\nwanted: %v\ngot:    %v", i, test.j, string(got))
		}
		var m2 Message
		if err := json.Unmarshal([]byte(test.j), &m2); err != nil {
			t.Errorf("Test %v: unwanted error unmarshalling: %v", i, err)
		}
		if want, got := test.m.String(), m2.String(); want != got {
			t.Errorf("Test %v: messages not equal after unmarshalling:\nwanted: %v\ngot:    %v", i, want, got)
		}
	}
}

func TestNew(t *testing.T) {
	m, err := New(AskJoin, JoinRequest{Name: "Bob", GameCode: "7F3A"})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	want := `{"event":"c:ask:menu/join","args":[{"name":"Bob","gameId":"7F3A"}]}`
	got, err := json.Marshal(m)
	switch {
	case err != nil:
		t.Errorf("unwanted error marshalling: %v", err)
	case want != string(got):
		t.Errorf("not equal:\nwanted: %v\ngot:    %v", want, string(got))
	}
}

func TestNewBadArg(t *testing.T) {
	if _, err := New(SayChooseAnswer, make(chan int)); err == nil {
		t.Error("wanted error encoding channel argument")
	}
}

func TestReply(t *testing.T) {
	request := Message{Event: RequestImage, ID: 9}
	reply, err := request.Reply("data:image/png;base64,AAAA")
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case !reply.IsAck(), reply.Ack != 9:
		t.Errorf("wanted reply to ack 9, got %v", reply)
	case len(reply.Event) != 0:
		t.Errorf("wanted reply to have no event, got %v", reply.Event)
	}
	var image string
	if err := reply.Arg(0, &image); err != nil || image != "data:image/png;base64,AAAA" {
		t.Errorf("wanted image argument, got %q (error: %v)", image, err)
	}
	errReply := request.ReplyError(errors.New("no images"))
	if !errReply.IsAck() || errReply.Error != "no images" || len(errReply.Args) != 0 {
		t.Errorf("unwanted error reply: %v", errReply)
	}
}

func TestArg(t *testing.T) {
	m, err := New(GameEnded, game.Scoreboard{"Alice": 3, "Bob": 5})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	argTests := []struct {
		index   int
		v       interface{}
		wantErr bool
		want    interface{}
	}{
		{
			index: 0,
			v:     new(game.Scoreboard),
			want:  &game.Scoreboard{"Alice": 3, "Bob": 5},
		},
		{
			index:   1,
			v:       new(game.Scoreboard),
			wantErr: true,
		},
		{
			index:   -1,
			v:       new(game.Scoreboard),
			wantErr: true,
		},
		{
			index:   0,
			v:       new(string),
			wantErr: true,
		},
	}
	for i, test := range argTests {
		err := m.Arg(test.index, test.v)
		switch {
		case test.wantErr:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case !reflect.DeepEqual(test.want, test.v):
			t.Errorf("Test %v: not equal:\nwanted: %v\ngot:    %v", i, test.want, test.v)
		}
	}
	if err := m.Arg(3, new(int)); !errors.Is(err, ErrMissingArg) {
		t.Errorf("wanted ErrMissingArg, got %v", err)
	}
}

func TestString(t *testing.T) {
	stringTests := []struct {
		m    Message
		want string
	}{
		{Message{Event: PlayerJoined, Args: []json.RawMessage{[]byte(`"Bob"`)}}, "s:say:lobby:player-joined (1 args)"},
		{Message{Event: AskCreate, ID: 2}, "c:ask:menu/create #2 (0 args)"},
		{Message{Ack: 2, Args: []json.RawMessage{[]byte(`"7F3A"`)}}, "ack 2 (1 args)"},
		{Message{Ack: 5, Error: "empty"}, "ack 5 (error: empty)"},
	}
	for i, test := range stringTests {
		if got := test.m.String(); test.want != got {
			t.Errorf("Test %v: wanted %q, got %q", i, test.want, got)
		}
	}
}
