package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mycobot/internal/app"
	"mycobot/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// zap production config writes to stderr, stdout stays free for the protocol.
	logger, err := app.NewLogger(cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize mycobot", zap.Error(err))
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mycobot-mcp",
		Version: "1.0.0",
	}, nil)
	registerTools(server, NewMycoBotMCPServer(a.Panels, logger.Named("mcp")))

	logger.Info("starting mycobot MCP server on stdin/stdout")
	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func registerTools(server *mcp.Server, s *MycoBotMCPServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_mycobot",
		Description: "Asks MycoBot a mushroom farming question; answers from the offline FAQ when the model is unreachable",
	}, s.Ask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_panels",
		Description: "Lists MycoBot panels with their fields and allowed values",
	}, s.ListPanels)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_panel",
		Description: "Runs a MycoBot panel (substrate, yield, tracker, journal, export, ...) with field values",
	}, s.RunPanel)
}
