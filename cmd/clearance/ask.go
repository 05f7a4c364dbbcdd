package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/assistant"
	"github.com/andresuchdata/clearance-agent/internal/config"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/pkg/clients/llm"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:  "ask",
		Usage: "Ask a question about the current clearance recommendations",
		Flags: withFlags([]cli.Flag{
			inputFlag(),
			&cli.StringFlag{
				Name:     "question",
				Aliases:  []string{"q"},
				Usage:    "Question about the recommended items",
				Required: true,
			},
		}, analysisFlags()),
		Action: runAsk,
	}
}

func runAsk(c *cli.Context) error {
	svc, err := newAssistant(appConfig)
	if err != nil {
		return err
	}

	result, err := analyzeInput(c)
	if err != nil {
		return err
	}
	table, err := clearance.RecommendationTable(result.Selected)
	if err != nil {
		return err
	}

	answer, err := svc.Ask(c.Context, c.String("question"), table)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, answer)
	return nil
}

// newAssistant builds the question-answering service from the LLM settings.
func newAssistant(cfg *config.Config) (*assistant.Service, error) {
	client, err := llm.NewChatClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("language model client: %w", err)
	}
	return assistant.NewService(client, cfg.LLM.Timeout), nil
}
