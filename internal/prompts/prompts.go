// Package prompts implements the MCP prompt handlers.
//
// Prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence, as opposed to tools,
// which the AI calls on its own.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt walks the AI through summarizing a project's board.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("devorch-status",
		mcp.WithPromptDescription(
			"Summarize a project's current state: the board grouped by parent, "+
				"what is active, what is ready to deploy, and any proposals waiting "+
				"in draft.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project to summarize; omit to pick from project_list"),
		),
	)
}

// Handle processes the devorch-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectID := ""
	if args := req.Params.Arguments; args != nil {
		projectID = args["project_id"]
	}

	selection := "1. Run `project_list` and ask me which project to look at\n"
	if projectID != "" {
		selection = fmt.Sprintf("1. Use project ID '%s'\n", projectID)
	}

	return &mcp.GetPromptResult{
		Description: "Project status summary",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Give me a status overview of my project.\n\n" +
						"Please:\n" +
						selection +
						"2. Run `journey_board` for that project\n" +
						"3. Run `proposal_list` with scope='project' to see pending proposals\n" +
						"4. Summarize: what is actively being worked on, what is ready or " +
						"deployed, what is still in planning, and which draft proposals " +
						"might be worth starting next. Keep it short and concrete.",
				),
			},
		},
	}, nil
}

// StartJourneyPrompt guides the AI through picking up a journey and
// setting up a worktree for it.
type StartJourneyPrompt struct{}

// NewStartJourneyPrompt creates a StartJourneyPrompt.
func NewStartJourneyPrompt() *StartJourneyPrompt {
	return &StartJourneyPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartJourneyPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("devorch-start-journey",
		mcp.WithPromptDescription(
			"Start working on a journey: create its git worktree, open the editor "+
				"and record a work session.",
		),
		mcp.WithArgument("journey_id",
			mcp.ArgumentDescription("Journey to start; omit to pick from the board"),
		),
	)
}

// Handle processes the devorch-start-journey prompt request.
func (p *StartJourneyPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	journeyID := ""
	if args := req.Params.Arguments; args != nil {
		journeyID = args["journey_id"]
	}

	selection := "1. Run `journey_board` and ask me which journey to start\n"
	if journeyID != "" {
		selection = fmt.Sprintf("1. Use journey ID '%s'\n", journeyID)
	}

	return &mcp.GetPromptResult{
		Description: "Start a journey",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to start working on a journey.\n\n" +
						"Please:\n" +
						selection +
						"2. Run `journey_get` to confirm its current stage and show me the " +
						"latest spec or plan if one exists (`journey_doc_get`)\n" +
						"3. Run `journey_start` to create the branch and worktree\n" +
						"4. Run `journey_open` to open the worktree in my editor\n" +
						"5. Run `journey_session` with action='start' and tool='editor'\n" +
						"6. Tell me the branch name and where the worktree lives.",
				),
			},
		},
	}, nil
}
