package main

import (
	"context"

	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

type mockGameClient struct {
	CreateGameFunc     func(ctx context.Context, playerName string) (string, error)
	JoinGameFunc       func(ctx context.Context, playerName, gameCode string) (game.JoinStatus, error)
	StartGameFunc      func() error
	SendAnswerFunc     func(playerName string) error
	SetImagesFunc      func(refs []string)
	PlayersInLobbyFunc func() ([]string, bool)
	OurScoreFunc       func() (int, error)
	ConfigFunc         func() (game.Config, error)
	LeaveGameFunc      func(ctx context.Context) error
}

func (m mockGameClient) CreateGame(ctx context.Context, playerName string) (string, error) {
	return m.CreateGameFunc(ctx, playerName)
}

func (m mockGameClient) JoinGame(ctx context.Context, playerName, gameCode string) (game.JoinStatus, error) {
	return m.JoinGameFunc(ctx, playerName, gameCode)
}

func (m mockGameClient) StartGame() error {
	return m.StartGameFunc()
}

func (m mockGameClient) SendAnswer(playerName string) error {
	return m.SendAnswerFunc(playerName)
}

func (m mockGameClient) SetImages(refs []string) {
	m.SetImagesFunc(refs)
}

func (m mockGameClient) PlayersInLobby() ([]string, bool) {
	return m.PlayersInLobbyFunc()
}

func (m mockGameClient) OurScore() (int, error) {
	return m.OurScoreFunc()
}

func (m mockGameClient) Config() (game.Config, error) {
	return m.ConfigFunc()
}

func (m mockGameClient) LeaveGame(ctx context.Context) error {
	return m.LeaveGameFunc(ctx)
}

type mockScoreReader func(ctx context.Context, playerName string) (*score.Total, error)

func (m mockScoreReader) Read(ctx context.Context, playerName string) (*score.Total, error) {
	return m(ctx, playerName)
}
