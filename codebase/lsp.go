package codebase

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dhamidi/classreader/format"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "classreader"

var lspLog = commonlog.GetLogger("classreader.lsp")

// LSPServer answers workspace/symbol and hover requests from the classes
// of a Codebase, and keeps it fresh with a Watcher while a client is
// connected.
type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	interval time.Duration
	watcher  *Watcher
	cancel   context.CancelFunc

	mu        sync.Mutex
	documents map[string]string
}

// NewLSPServer serves c. When c has no paths, the client's root folder is
// loaded on initialization. interval is the polling interval of the
// watcher, which is disabled when interval is negative.
func NewLSPServer(c *Codebase, version string, interval time.Duration) *LSPServer {
	ls := &LSPServer{
		codebase:  c,
		version:   version,
		interval:  interval,
		documents: make(map[string]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentHover:     ls.textDocumentHover,
		WorkspaceSymbol:       ls.workspaceSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if len(ls.codebase.Paths()) == 0 {
		rootDir := "."
		if params.RootPath != nil && *params.RootPath != "" {
			rootDir = *params.RootPath
		} else if params.RootURI != nil && *params.RootURI != "" {
			if path, err := uriToPath(*params.RootURI); err == nil {
				rootDir = path
			}
		}
		ls.codebase = New(ls.codebase.dispatcher.Delegate, rootDir)
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	var watchCtx context.Context
	watchCtx, ls.cancel = context.WithCancel(context.Background())

	if _, err := ls.codebase.Load(watchCtx); err != nil {
		lspLog.Warningf("load: %s", err)
	}
	lspLog.Infof("serving %d classes", ls.codebase.Len())

	if ls.interval >= 0 {
		ls.watcher = NewWatcher(ls.codebase, ls.interval)
		ls.watcher.Start(watchCtx)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	if ls.cancel != nil {
		ls.cancel()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.setDocument(params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	delete(ls.documents, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) setDocument(uri, text string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.documents[uri] = text
}

func (ls *LSPServer) document(uri string) (string, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	text, ok := ls.documents[uri]
	return text, ok
}

func (ls *LSPServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	symbols := ls.codebase.FindSymbols(params.Query)
	result := make([]protocol.SymbolInformation, 0, len(symbols))
	for _, s := range symbols {
		info := protocol.SymbolInformation{
			Name: s.Name,
			Kind: symbolKind(s),
			Location: protocol.Location{
				URI: originURI(ls.codebase.Origin(s.Class)),
			},
		}
		if s.Kind != format.SymbolClass {
			container := s.Class
			info.ContainerName = &container
		}
		result = append(result, info)
	}
	lspLog.Debugf("workspace/symbol %q: %d results", params.Query, len(result))
	return result, nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := ls.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := wordAt(text, int(params.Position.Line), int(params.Position.Character))
	if word == "" {
		return nil, nil
	}
	description, ok := ls.codebase.Describe(word)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```java\n" + description + "\n```",
		},
	}, nil
}

func symbolKind(s format.Symbol) protocol.SymbolKind {
	switch s.Kind {
	case format.SymbolClass:
		return protocol.SymbolKindClass
	case format.SymbolField:
		return protocol.SymbolKindField
	case format.SymbolMethod:
		if s.Constructor {
			return protocol.SymbolKindConstructor
		}
		return protocol.SymbolKindMethod
	default:
		return protocol.SymbolKindVariable
	}
}

// wordAt returns the dotted identifier around the given zero-based line
// and character.
func wordAt(text string, line, character int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(lines[line])
	if character < 0 || character > len(runes) {
		return ""
	}
	isWord := func(r rune) bool {
		return r == '.' || r == '$' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	start, end := character, character
	for start > 0 && isWord(runes[start-1]) {
		start--
	}
	for end < len(runes) && isWord(runes[end]) {
		end++
	}
	return strings.Trim(string(runes[start:end]), ".")
}

// originURI turns a class origin into a URI. Origins on disk become file
// URIs; archive entries keep their entry name.
func originURI(origin string) protocol.DocumentUri {
	if origin == "" {
		return ""
	}
	if _, err := os.Stat(origin); err != nil {
		return "classreader:" + filepath.ToSlash(origin)
	}
	abs, err := filepath.Abs(origin)
	if err != nil {
		abs = origin
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
