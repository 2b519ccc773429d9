// Scriptorium MCP Server - a Model Context Protocol server that binds an
// external document-management system to a MediaWiki instance used for
// collaborative transcription.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askeland/scriptorium/adapter"
	"github.com/askeland/scriptorium/connector"
	"github.com/askeland/scriptorium/metrics"
	"github.com/askeland/scriptorium/tracing"
	"github.com/askeland/scriptorium/wiki"
)

const (
	ServerName    = "scriptorium-mcp-server"
	ServerVersion = "1.0.0"
)

// recoverPanic wraps a handler with panic recovery so a single bad tool
// call cannot bring the server down.
func recoverPanic(logger *slog.Logger, tool string) {
	if r := recover(); r != nil {
		metrics.PanicsRecovered.WithLabelValues(tool).Inc()
		logger.Error("Panic recovered",
			"tool", tool,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

func main() {
	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	config, err := wiki.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	source, err := loadAdapter()
	if err != nil {
		log.Fatalf("Failed to load adapter: %v", err)
	}

	client := wiki.NewClient(config, logger)
	conn := connector.New(source, client, logger)

	if config.HasCredentials() {
		if err := conn.Login(ctx, config.Username, config.Password); err != nil {
			log.Fatalf("Failed to log in: %v", err)
		}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger: logger,
		Instructions: `Scriptorium MCP Server connects an external document archive to a MediaWiki transcription wiki.

Available tools:
- scriptorium_login: Authenticate the wiki session
- scriptorium_logout: End the wiki session
- scriptorium_get_session: Session user, export and protect capabilities
- scriptorium_get_document: Document title and page inventory
- scriptorium_get_page: Transcription or talk page content (wikitext, html, plaintext)
- scriptorium_preview: Render wikitext without saving
- scriptorium_edit_page: Save a transcription or talk page (conflict-guarded)
- scriptorium_can_edit: Check edit permission against live page protections
- scriptorium_protect_page: Apply or lift sysop protection
- scriptorium_watch_page: Watch or unwatch a transcription page
- scriptorium_list_user_pages: Session user's recently transcribed pages
- scriptorium_list_recent_changes: Recently changed document pages
- scriptorium_list_watchlist: Watched document pages
- scriptorium_list_all_pages: All document pages with content
- scriptorium_import_page: Export one page's transcription to the archive
- scriptorium_import_document: Export a whole document's transcription
- scriptorium_get_wiki_info: Wiki name, version, and language

Configure via environment variables:
- SCRIPTORIUM_WIKI_URL: Wiki API URL (e.g., https://wiki.example.com/api.php)
- SCRIPTORIUM_USERNAME: Bot username (for editing)
- SCRIPTORIUM_PASSWORD: Bot password (for editing)
- SCRIPTORIUM_ADAPTER_FIXTURE: JSON file seeding the document adapter`,
	})

	registerTools(server, conn, logger)

	logger.Info("Starting Scriptorium MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadAdapter builds the document adapter. The in-memory adapter backed
// by a JSON fixture is the only one shipped with the server binary; real
// deployments implement adapter.Adapter against their archive and swap
// it in here.
func loadAdapter() (adapter.Adapter, error) {
	if path := os.Getenv("SCRIPTORIUM_ADAPTER_FIXTURE"); path != "" {
		return adapter.LoadMemory(path)
	}
	return adapter.NewMemory(), nil
}

// observe wraps a tool handler body with the shared telemetry: a span,
// the request counter, and the latency histogram.
func observe[T any](ctx context.Context, logger *slog.Logger, tool string, fn func(context.Context) (T, error)) (T, error) {
	defer recoverPanic(logger, tool)

	ctx, span := tracing.StartSpan(ctx, tool)
	defer span.End()
	tracing.AddToolAttributes(span, tool, "transcription")

	start := time.Now()
	result, err := fn(ctx)
	metrics.RecordRequest(tool, time.Since(start).Seconds(), err == nil)
	if err != nil {
		tracing.RecordError(span, err)
	}
	return result, err
}

func registerTools(server *mcp.Server, conn *connector.Connector, logger *slog.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_login",
		Description: "Authenticate the wiki session with a username and password.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Log In",
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.LoginArgs) (*mcp.CallToolResult, connector.SessionStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_login", func(ctx context.Context) (connector.SessionStatus, error) {
			if err := conn.Login(ctx, args.Username, args.Password); err != nil {
				return connector.SessionStatus{}, fmt.Errorf("login failed: %w", err)
			}
			return conn.SessionStatus(ctx)
		})
		if err != nil {
			return nil, connector.SessionStatus{}, err
		}
		logger.Info("Tool executed", "tool", "scriptorium_login", "user", result.UserName)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_logout",
		Description: "End the wiki session and discard its cookies.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Log Out",
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, connector.SessionStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_logout", func(ctx context.Context) (connector.SessionStatus, error) {
			if err := conn.Logout(ctx); err != nil {
				return connector.SessionStatus{}, fmt.Errorf("logout failed: %w", err)
			}
			return conn.SessionStatus(ctx)
		})
		if err != nil {
			return nil, connector.SessionStatus{}, err
		}
		logger.Info("Tool executed", "tool", "scriptorium_logout")
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_get_session",
		Description: "Report the session user and whether it may export transcriptions or protect pages.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Session",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, connector.SessionStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_get_session", func(ctx context.Context) (connector.SessionStatus, error) {
			return conn.SessionStatus(ctx)
		})
		if err != nil {
			return nil, connector.SessionStatus{}, fmt.Errorf("failed to get session: %w", err)
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_get_document",
		Description: "Get a document's title and its pages in order, as declared by the external archive.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Document",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.DocumentArgs) (*mcp.CallToolResult, connector.DocumentInfo, error) {
		result, err := observe(ctx, logger, "scriptorium_get_document", func(ctx context.Context) (connector.DocumentInfo, error) {
			return conn.GetDocument(ctx, args)
		})
		if err != nil {
			return nil, connector.DocumentInfo{}, fmt.Errorf("failed to get document: %w", err)
		}
		logger.Info("Tool executed",
			"tool", "scriptorium_get_document",
			"document_id", args.DocumentID,
			"pages", len(result.Pages),
		)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_get_page",
		Description: "Read a document page's transcription (or its talk page) as wikitext, HTML, or plain text. Pages without content read as empty.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Page",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.GetPageArgs) (*mcp.CallToolResult, connector.PageContent, error) {
		result, err := observe(ctx, logger, "scriptorium_get_page", func(ctx context.Context) (connector.PageContent, error) {
			return conn.GetPageContent(ctx, args)
		})
		if err != nil {
			return nil, connector.PageContent{}, fmt.Errorf("failed to get page: %w", err)
		}
		logger.Info("Tool executed",
			"tool", "scriptorium_get_page",
			"document_id", args.DocumentID,
			"page_id", result.PageID,
			"format", result.Format,
			"output_chars", len(result.Content),
		)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_preview",
		Description: "Render wikitext to HTML without saving. Useful for checking markup before an edit.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Preview Wikitext",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.PreviewArgs) (*mcp.CallToolResult, connector.PreviewResult, error) {
		result, err := observe(ctx, logger, "scriptorium_preview", func(ctx context.Context) (connector.PreviewResult, error) {
			return conn.PreviewWikitext(ctx, args)
		})
		if err != nil {
			return nil, connector.PreviewResult{}, fmt.Errorf("failed to preview: %w", err)
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_edit_page",
		Description: "Save new wikitext to a document page or its talk page. The save is rejected with an edit conflict when a newer revision exists on the wiki.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Edit Page",
			DestructiveHint: ptr(true),
			OpenWorldHint:   ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.EditArgs) (*mcp.CallToolResult, connector.EditOutcome, error) {
		result, err := observe(ctx, logger, "scriptorium_edit_page", func(ctx context.Context) (connector.EditOutcome, error) {
			return conn.EditPageContent(ctx, args)
		})
		if err != nil {
			return nil, connector.EditOutcome{}, fmt.Errorf("failed to edit page: %w", err)
		}
		logger.Info("Tool executed",
			"tool", "scriptorium_edit_page",
			"document_id", args.DocumentID,
			"wiki_title", result.WikiTitle,
			"input_chars", len(args.Text),
			"new_page", result.NewPage,
		)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_can_edit",
		Description: "Check whether the session user may edit a page, from its live protections and the user's rights.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Check Edit Permission",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.PageRefArgs) (*mcp.CallToolResult, connector.CanEditResult, error) {
		result, err := observe(ctx, logger, "scriptorium_can_edit", func(ctx context.Context) (connector.CanEditResult, error) {
			return conn.CheckEdit(ctx, args)
		})
		if err != nil {
			return nil, connector.CanEditResult{}, fmt.Errorf("failed to check edit permission: %w", err)
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_protect_page",
		Description: "Apply or lift sysop-only protection on a document page or its talk page. Requires the protect right.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Protect Page",
			DestructiveHint: ptr(true),
			OpenWorldHint:   ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ProtectArgs) (*mcp.CallToolResult, connector.PageStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_protect_page", func(ctx context.Context) (connector.PageStatus, error) {
			return conn.SetProtection(ctx, args)
		})
		if err != nil {
			return nil, connector.PageStatus{}, fmt.Errorf("failed to change protection: %w", err)
		}
		logger.Info("Tool executed",
			"tool", "scriptorium_protect_page",
			"wiki_title", result.WikiTitle,
			"unprotect", args.Unprotect,
		)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_watch_page",
		Description: "Add or remove a document's transcription page on the session user's watchlist.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Watch Page",
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.WatchArgs) (*mcp.CallToolResult, connector.PageStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_watch_page", func(ctx context.Context) (connector.PageStatus, error) {
			return conn.SetWatch(ctx, args)
		})
		if err != nil {
			return nil, connector.PageStatus{}, fmt.Errorf("failed to change watch state: %w", err)
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_list_user_pages",
		Description: "List the session user's most recently transcribed document pages, newest first.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List My Pages",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ListArgs) (*mcp.CallToolResult, connector.ListingResult, error) {
		result, err := observe(ctx, logger, "scriptorium_list_user_pages", func(ctx context.Context) (connector.ListingResult, error) {
			return conn.ListUserPages(ctx, args)
		})
		if err != nil {
			return nil, connector.ListingResult{}, fmt.Errorf("failed to list user pages: %w", err)
		}
		logger.Info("Tool executed", "tool", "scriptorium_list_user_pages", "records", result.Count)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_list_recent_changes",
		Description: "List recently edited or created document pages across the wiki.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Recent Changes",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ListArgs) (*mcp.CallToolResult, connector.ListingResult, error) {
		result, err := observe(ctx, logger, "scriptorium_list_recent_changes", func(ctx context.Context) (connector.ListingResult, error) {
			return conn.ListRecentChanges(ctx, args)
		})
		if err != nil {
			return nil, connector.ListingResult{}, fmt.Errorf("failed to list recent changes: %w", err)
		}
		logger.Info("Tool executed", "tool", "scriptorium_list_recent_changes", "records", result.Count)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_list_watchlist",
		Description: "List the document pages on the session user's watchlist.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Watchlist",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ListArgs) (*mcp.CallToolResult, connector.ListingResult, error) {
		result, err := observe(ctx, logger, "scriptorium_list_watchlist", func(ctx context.Context) (connector.ListingResult, error) {
			return conn.ListWatchlist(ctx, args)
		})
		if err != nil {
			return nil, connector.ListingResult{}, fmt.Errorf("failed to list watchlist: %w", err)
		}
		logger.Info("Tool executed", "tool", "scriptorium_list_watchlist", "records", result.Count)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_list_all_pages",
		Description: "Enumerate every document page that has content on the wiki.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List All Pages",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ListArgs) (*mcp.CallToolResult, connector.ListingResult, error) {
		result, err := observe(ctx, logger, "scriptorium_list_all_pages", func(ctx context.Context) (connector.ListingResult, error) {
			return conn.ListAllPages(ctx, args)
		})
		if err != nil {
			return nil, connector.ListingResult{}, fmt.Errorf("failed to list pages: %w", err)
		}
		logger.Info("Tool executed", "tool", "scriptorium_list_all_pages", "records", result.Count)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_import_page",
		Description: "Export one page's transcription from the wiki back to the external archive. Requires export permission.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Import Page Transcription",
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ImportPageArgs) (*mcp.CallToolResult, connector.ImportStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_import_page", func(ctx context.Context) (connector.ImportStatus, error) {
			return conn.ImportPage(ctx, args)
		})
		if err != nil {
			return nil, connector.ImportStatus{}, fmt.Errorf("failed to import page transcription: %w", err)
		}
		logger.Info("Tool executed",
			"tool", "scriptorium_import_page",
			"document_id", result.DocumentID,
			"page_id", result.PageID,
		)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_import_document",
		Description: "Export a whole document's concatenated transcription to the external archive. Requires export permission.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Import Document Transcription",
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args connector.ImportDocumentArgs) (*mcp.CallToolResult, connector.ImportStatus, error) {
		result, err := observe(ctx, logger, "scriptorium_import_document", func(ctx context.Context) (connector.ImportStatus, error) {
			return conn.ImportDocument(ctx, args)
		})
		if err != nil {
			return nil, connector.ImportStatus{}, fmt.Errorf("failed to import document transcription: %w", err)
		}
		logger.Info("Tool executed", "tool", "scriptorium_import_document", "document_id", result.DocumentID)
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scriptorium_get_wiki_info",
		Description: "Get the wiki's name, software version, and language.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Wiki Info",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr(true),
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, connector.WikiInfo, error) {
		result, err := observe(ctx, logger, "scriptorium_get_wiki_info", func(ctx context.Context) (connector.WikiInfo, error) {
			return conn.SiteInfo(ctx)
		})
		if err != nil {
			return nil, connector.WikiInfo{}, fmt.Errorf("failed to get wiki info: %w", err)
		}
		return nil, result, nil
	})
}

func ptr[T any](v T) *T {
	return &v
}
