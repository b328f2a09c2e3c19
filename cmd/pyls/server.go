package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pymodel/langcore/internal/modresolver"
	"github.com/pymodel/langcore/internal/pyanalysis"
	"github.com/pymodel/langcore/internal/rdt"
)

// Server is the stdio JSON-RPC front end wiring the Running Document
// Table, the module/path resolvers, and the analysis pipeline into the
// Language Server Protocol. It owns no analysis state of its own — every
// durable piece of state (open buffers, parsed ASTs, published analyses)
// lives in the rdt.Table and the documents it tracks.
type Server struct {
	writer   io.Writer
	mu       sync.Mutex
	rootPath string

	table    *rdt.Table
	resolver *modresolver.Resolver
	analyzer *pyanalysis.Analyzer
	provider *modresolver.Provider
}

func NewServer(writer io.Writer, table *rdt.Table, resolver *modresolver.Resolver, analyzer *pyanalysis.Analyzer, provider *modresolver.Provider) *Server {
	if writer == nil {
		writer = os.Stdout
	}
	return &Server{
		writer:   writer,
		table:    table,
		resolver: resolver,
		analyzer: analyzer,
		provider: provider,
	}
}

// Start reads LSP's Content-Length-framed JSON-RPC messages from stdin
// until EOF or an "exit" notification. A bufio.Reader rather than a
// bufio.Scanner: message bodies can exceed a Scanner's default token size.
func (s *Server) Start() {
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("pyls: error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("pyls: bad Content-Length: %v", err)
			continue
		}

		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("pyls: error reading header separator: %v", err)
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("pyls: error reading message body: %v", err)
			return
		}

		if err := s.handleMessage(content); err != nil {
			log.Printf("pyls: error handling message: %v", err)
		}
	}
}

type baseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

func (s *Server) handleMessage(content []byte) error {
	var base baseMessage
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("pyls: unmarshal message: %w", err)
	}
	if base.ID != nil {
		return s.handleRequest(base, content)
	}
	return s.handleNotification(base, content)
}

func (s *Server) handleRequest(base baseMessage, content []byte) error {
	switch base.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleInitialize(base.ID, params)

	case "shutdown":
		return s.handleShutdown(base.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleHover(base.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDefinition(base.ID, params)

	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      base.ID,
			Error:   &Error{Code: -32601, Message: fmt.Sprintf("method not found: %s", base.Method)},
		})
	}
}

func (s *Server) handleNotification(base baseMessage, content []byte) error {
	switch base.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		os.Exit(0)
		return nil

	default:
		return nil
	}
}

func (s *Server) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

func (s *Server) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *Server) sendMessage(message interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
