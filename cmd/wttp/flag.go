package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/jacobpatterson1549/who-took-that-photo/client"
	"github.com/joho/godotenv"
)

const (
	environmentVariableServerURL   = "WTTP_SERVER_URL"
	environmentVariablePlayerName  = "WTTP_PLAYER_NAME"
	environmentVariableAccessToken = "WTTP_ACCESS_TOKEN"
	environmentVariableImages      = "WTTP_IMAGES"
	environmentVariableHistoryURL  = "WTTP_HISTORY_URL"
	environmentVariableJoinGraceMS = "WTTP_JOIN_GRACE_MS"
	environmentVariableDebug       = "WTTP_DEBUG"
)

// mainFlags are the configuration options which can be easily configured at run startup for different environments.
type mainFlags struct {
	serverURL   string
	playerName  string
	accessToken string
	images      string
	historyURL  string
	joinGraceMS int
	debug       bool
}

// usage prints how to run the client to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariableServerURL,
		environmentVariablePlayerName,
		environmentVariableAccessToken,
		environmentVariableImages,
		environmentVariableHistoryURL,
		environmentVariableJoinGraceMS,
		environmentVariableDebug,
	}
	fmt.Fprintf(fs.Output(), "Plays Who Took That Photo on a game server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible, including those in a .env file: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return ""
	}
	envValueInt := func(key string, defaultValue int) int {
		v1 := envValue(key)
		v2, err := strconv.Atoi(v1)
		if err != nil {
			return defaultValue
		}
		return v2
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	defaultJoinGraceMS := int(client.DefaultJoinGracePeriod.Milliseconds())
	fs.StringVar(&m.serverURL, "server-url", envValue(environmentVariableServerURL), "The websocket url of the game server.  Required.")
	fs.StringVar(&m.playerName, "player-name", envValue(environmentVariablePlayerName), "The default name to create and join games with.  Defaults to the subject of the access token.")
	fs.StringVar(&m.accessToken, "access-token", envValue(environmentVariableAccessToken), "A jwt sent to the server when connecting.")
	fs.StringVar(&m.images, "images", envValue(environmentVariableImages), "Comma separated paths or urls of the images to submit to games.")
	fs.StringVar(&m.historyURL, "history-url", envValue(environmentVariableHistoryURL), "The database to archive final scores in: postgres://, mongodb://, redis://, or firestore://PROJECT_ID.")
	fs.IntVar(&m.joinGraceMS, "join-grace-ms", envValueInt(environmentVariableJoinGraceMS, defaultJoinGraceMS), "Milliseconds to wait after joining a game before asking for the players in it.")
	fs.BoolVar(&m.debug, "debug", envPresent(environmentVariableDebug), "Logs messages passed to and from the server.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}

// envFileLookupFunc creates a lookup func that falls back to the variables in the env file if the os does not have them.
// A missing env file is not an error.
func envFileLookupFunc(filename string, osLookupEnvFunc func(string) (string, bool)) (func(string) (string, bool), error) {
	fileVars, err := godotenv.Read(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return osLookupEnvFunc, nil
	case err != nil:
		return nil, fmt.Errorf("reading %v: %w", filename, err)
	}
	f := func(key string) (string, bool) {
		if v, ok := osLookupEnvFunc(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
	return f, nil
}
