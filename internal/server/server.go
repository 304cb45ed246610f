// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools/prompts/resources that depend on them.
// No business logic lives here — only wiring.
package server

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/devorch/devorch/internal/ai"
	"github.com/devorch/devorch/internal/config"
	"github.com/devorch/devorch/internal/logging"
	"github.com/devorch/devorch/internal/metrics"
	"github.com/devorch/devorch/internal/prompts"
	"github.com/devorch/devorch/internal/resources"
	"github.com/devorch/devorch/internal/shell"
	"github.com/devorch/devorch/internal/store"
	"github.com/devorch/devorch/internal/templates"
	"github.com/devorch/devorch/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts
// and resources registered. The returned Recorder backs the optional
// metrics listener; the cleanup function closes the store and log file
// and must be called on shutdown. It is always non-nil.
func New(cfg config.Config) (*server.MCPServer, *metrics.Recorder, func(), error) {
	logger, err := logging.New(cfg.DataDir)
	if err != nil {
		// Logging is diagnostic only; a nil logger drops lines.
		fmt.Fprintf(os.Stderr, "WARNING: file logging disabled: %v\n", err)
		logger = nil
	}

	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Printf("server: store close: %v", err)
		}
		_ = logger.Close()
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		cleanup()
		return nil, nil, noop, fmt.Errorf("creating template renderer: %w", err)
	}

	recorder := metrics.NewRecorder()

	// The AI gateway degrades rather than disables: without an API key
	// the generation tools stay registered and report a clear error.
	var gateway ai.Gateway
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		gateway = ai.Instrument(
			ai.NewAnthropicClient(apiKey, cfg.AI.Model, cfg.AI.MaxTokens),
			cfg.AI.Model,
			recorder,
		)
	} else {
		logger.Printf("server: ANTHROPIC_API_KEY not set, AI tools disabled")
		gateway = ai.Disabled("ANTHROPIC_API_KEY is not set; export it and restart the server")
	}

	worktrees := shell.NewWorktreeManager(shell.NewExecGitRunner(logger), logger)
	launcher := shell.NewLauncher(cfg.Shell.EditorCommand, cfg.Shell.TerminalCommand, logger)

	s := server.NewMCPServer(
		"devorch",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Project tools ---

	projectCreate := tools.NewProjectCreateTool(st, recorder)
	s.AddTool(projectCreate.Definition(), projectCreate.Handle)

	projectList := tools.NewProjectListTool(st)
	s.AddTool(projectList.Definition(), projectList.Handle)

	projectGet := tools.NewProjectGetTool(st)
	s.AddTool(projectGet.Definition(), projectGet.Handle)

	projectUpdate := tools.NewProjectUpdateTool(st, recorder)
	s.AddTool(projectUpdate.Definition(), projectUpdate.Handle)

	projectDelete := tools.NewProjectDeleteTool(st, recorder)
	s.AddTool(projectDelete.Definition(), projectDelete.Handle)

	// --- Journey tools ---

	journeyCreate := tools.NewJourneyCreateTool(st, recorder)
	s.AddTool(journeyCreate.Definition(), journeyCreate.Handle)

	journeyList := tools.NewJourneyListTool(st)
	s.AddTool(journeyList.Definition(), journeyList.Handle)

	journeyGet := tools.NewJourneyGetTool(st)
	s.AddTool(journeyGet.Definition(), journeyGet.Handle)

	journeyUpdate := tools.NewJourneyUpdateTool(st, recorder)
	s.AddTool(journeyUpdate.Definition(), journeyUpdate.Handle)

	journeyDelete := tools.NewJourneyDeleteTool(st, worktrees, recorder)
	s.AddTool(journeyDelete.Definition(), journeyDelete.Handle)

	journeyAdvance := tools.NewJourneyAdvanceTool(st, recorder)
	s.AddTool(journeyAdvance.Definition(), journeyAdvance.Handle)

	journeyStart := tools.NewJourneyStartTool(st, worktrees, recorder)
	s.AddTool(journeyStart.Definition(), journeyStart.Handle)

	journeyOpen := tools.NewJourneyOpenTool(st, launcher)
	s.AddTool(journeyOpen.Definition(), journeyOpen.Handle)

	journeyBoard := tools.NewJourneyBoardTool(st)
	s.AddTool(journeyBoard.Definition(), journeyBoard.Handle)

	journeySearch := tools.NewJourneySearchTool(st)
	s.AddTool(journeySearch.Definition(), journeySearch.Handle)

	journeyDocAdd := tools.NewJourneyDocAddTool(st, recorder)
	s.AddTool(journeyDocAdd.Definition(), journeyDocAdd.Handle)

	journeyDocGet := tools.NewJourneyDocGetTool(st)
	s.AddTool(journeyDocGet.Definition(), journeyDocGet.Handle)

	journeyChecklist := tools.NewJourneyChecklistTool(st, recorder)
	s.AddTool(journeyChecklist.Definition(), journeyChecklist.Handle)

	journeyLink := tools.NewJourneyLinkTool(st, recorder)
	s.AddTool(journeyLink.Definition(), journeyLink.Handle)

	journeySession := tools.NewJourneySessionTool(st, recorder)
	s.AddTool(journeySession.Definition(), journeySession.Handle)

	// --- Proposal tools ---

	proposalAdd := tools.NewProposalAddTool(st, recorder)
	s.AddTool(proposalAdd.Definition(), proposalAdd.Handle)

	proposalList := tools.NewProposalListTool(st)
	s.AddTool(proposalList.Definition(), proposalList.Handle)

	proposalUpdate := tools.NewProposalUpdateTool(st, recorder)
	s.AddTool(proposalUpdate.Definition(), proposalUpdate.Handle)

	proposalDelete := tools.NewProposalDeleteTool(st, recorder)
	s.AddTool(proposalDelete.Definition(), proposalDelete.Handle)

	proposalToggle := tools.NewProposalToggleTool(st, recorder)
	s.AddTool(proposalToggle.Definition(), proposalToggle.Handle)

	proposalReset := tools.NewProposalResetTool(st, recorder)
	s.AddTool(proposalReset.Definition(), proposalReset.Handle)

	proposalReorder := tools.NewProposalReorderTool(st, recorder)
	s.AddTool(proposalReorder.Definition(), proposalReorder.Handle)

	proposalGroup := tools.NewProposalGroupTool(st, recorder)
	s.AddTool(proposalGroup.Definition(), proposalGroup.Handle)

	proposalCleanup := tools.NewProposalCleanupTool(st, recorder)
	s.AddTool(proposalCleanup.Definition(), proposalCleanup.Handle)

	proposalPromote := tools.NewProposalPromoteTool(st, recorder)
	s.AddTool(proposalPromote.Definition(), proposalPromote.Handle)

	proposalGenerate := tools.NewProposalGenerateTool(st, gateway, renderer, recorder)
	s.AddTool(proposalGenerate.Definition(), proposalGenerate.Handle)

	intakeRefine := tools.NewIntakeRefineTool(st, gateway, renderer, recorder)
	s.AddTool(intakeRefine.Definition(), intakeRefine.Handle)

	// --- Prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	startPrompt := prompts.NewStartJourneyPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(st)
	s.AddResource(resourceHandler.ProjectsResource(), resourceHandler.HandleProjects)
	s.AddResource(resourceHandler.BoardResource(), resourceHandler.HandleBoard)

	return s, recorder, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use devorch effectively.
func serverInstructions() string {
	return `You have access to devorch, a development orchestrator MCP server.

devorch tracks PROJECTS (codebases) and JOURNEYS (units of work moving
through fixed stage flows). Each journey type has its own flow:

- feature_planning: intake → speccing → ui_planning → planning → review → approved
- feature: review_and_edit_plan → implementing → testing → pre_prod_review → merge_approved → staging_qa → deployed
- investigation: in_progress → complete
- bug: reported → investigating → fixing

The board status (planning / in_progress / ready / deployed) is always
derived from the stage — never set it directly, move the stage with
journey_advance or journey_update.

## Typical workflows

Planning new work:
1. project_get to read the intake; intake_refine if it is still raw
2. proposal_generate to break the intake into proposals, or proposal_add manually
3. Discuss with the user; proposal_toggle to park items (reject/punt/completed)
4. proposal_promote to turn accepted proposals into journeys

Working on a journey:
1. journey_board to see what's in flight
2. journey_start to create the git branch and worktree
3. journey_open to open the editor; journey_session to log the work
4. journey_advance as stages complete; journey_doc_add to record specs and plans

Housekeeping:
- proposal_cleanup after deleting journeys to cancel dangling proposals
- journey_link to record blocks/relates_to relationships
- journey_search to find past work

Tools store what YOU generate: write real specs, plans and proposal
descriptions — never placeholders.`
}
