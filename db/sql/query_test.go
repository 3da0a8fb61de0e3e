package sql

import (
	"reflect"
	"testing"
)

func TestQueryCmd(t *testing.T) {
	tests := []struct {
		q        Query
		wantCmd  string
		wantArgs []interface{}
	}{
		{
			q:        NewQueryFunction("score_read", []string{"player_name", "points", "games"}, "Alice"),
			wantCmd:  "SELECT player_name, points, games FROM score_read($1)",
			wantArgs: []interface{}{"Alice"},
		},
		{
			q:        NewExecFunction("score_create", "id", "7F3A", "Alice"),
			wantCmd:  "SELECT score_create($1, $2, $3)",
			wantArgs: []interface{}{"id", "7F3A", "Alice"},
		},
		{
			q:       NewExecFunction("score_reset"),
			wantCmd: "SELECT score_reset()",
		},
		{
			q:       RawQuery("CREATE TABLE IF NOT EXISTS results ();"),
			wantCmd: "CREATE TABLE IF NOT EXISTS results ();",
		},
	}
	for i, test := range tests {
		gotCmd := test.q.Cmd()
		gotArgs := test.q.Args()
		switch {
		case test.wantCmd != gotCmd:
			t.Errorf("Test %v: commands not equal: \n wanted: %q \n got:    %q", i, test.wantCmd, gotCmd)
		case len(test.wantArgs) != len(gotArgs), len(gotArgs) != 0 && !reflect.DeepEqual(test.wantArgs, gotArgs):
			t.Errorf("Test %v: args not equal: \n wanted: %v \n got:    %v", i, test.wantArgs, gotArgs)
		}
	}
}
