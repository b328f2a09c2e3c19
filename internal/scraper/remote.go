package scraper

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// serviceProto describes the remote scraper's wire contract. It's parsed
// from an in-memory string rather than a checked-in .proto file plus
// generated pb.go stubs — codegen-free dynamic messages keep the wire
// schema next to the one client that speaks it.
const serviceProto = `
syntax = "proto3";
package pyls.scraper;

message ScrapeRequest {
  string module_path = 1;
  string python_version = 2;
}

message ScrapeResponse {
  string stub_source = 1;
  string error = 2;
}

service Scraper {
  rpc Scrape(ScrapeRequest) returns (ScrapeResponse);
}
`

const serviceMethod = "/pyls.scraper.Scraper/Scrape"

var (
	scrapeMethodDesc     *desc.MethodDescriptor
	scrapeMethodDescOnce sync.Once
	scrapeMethodDescErr  error
)

func methodDescriptor() (*desc.MethodDescriptor, error) {
	scrapeMethodDescOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{
				"scraper.proto": serviceProto,
			}),
		}
		fds, err := parser.ParseFiles("scraper.proto")
		if err != nil {
			scrapeMethodDescErr = fmt.Errorf("scraper: parsing service descriptor: %w", err)
			return
		}
		svc := fds[0].FindService("pyls.scraper.Scraper")
		if svc == nil {
			scrapeMethodDescErr = fmt.Errorf("scraper: service pyls.scraper.Scraper not found in descriptor")
			return
		}
		scrapeMethodDesc = svc.FindMethodByName("Scrape")
		if scrapeMethodDesc == nil {
			scrapeMethodDescErr = fmt.Errorf("scraper: method Scrape not found on service descriptor")
		}
	})
	return scrapeMethodDesc, scrapeMethodDescErr
}

// RemoteScraperClient dispatches scraping to a remote worker over gRPC,
// for workspaces whose compiled extensions target a different
// platform/arch than the language server process itself.
type RemoteScraperClient struct {
	conn          *grpc.ClientConn
	pythonVersion string
}

// DialRemoteScraper connects to a remote scraper worker at addr.
// pythonVersion is forwarded on every request so the worker can pick a
// matching interpreter if it hosts more than one.
func DialRemoteScraper(addr, pythonVersion string) (*RemoteScraperClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("scraper: dialing remote scraper %s: %w", addr, err)
	}
	return &RemoteScraperClient{conn: conn, pythonVersion: pythonVersion}, nil
}

// Close releases the underlying gRPC connection.
func (c *RemoteScraperClient) Close() error { return c.conn.Close() }

// Scrape implements modresolver.Scraper by invoking the remote worker's
// Scrape RPC with a dynamically-built ScrapeRequest message.
func (c *RemoteScraperClient) Scrape(ctx context.Context, modulePath string) (string, error) {
	md, err := methodDescriptor()
	if err != nil {
		return "", err
	}

	req := dynamic.NewMessage(md.GetInputType())
	req.SetFieldByName("module_path", modulePath)
	req.SetFieldByName("python_version", c.pythonVersion)

	resp := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, serviceMethod, req, resp); err != nil {
		return "", fmt.Errorf("scraper: remote scrape of %s failed: %w", modulePath, err)
	}

	if errMsg, _ := resp.TryGetFieldByName("error"); errMsg != nil {
		if s, ok := errMsg.(string); ok && s != "" {
			return "", fmt.Errorf("scraper: remote worker reported: %s", s)
		}
	}
	stub, _ := resp.TryGetFieldByName("stub_source")
	s, _ := stub.(string)
	return s, nil
}
