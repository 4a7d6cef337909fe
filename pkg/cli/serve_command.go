package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

type healthResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	LakePath     string `json:"lakePath"`
	ProjectCount int    `json:"projectCount"`
	UptimeSecs   int64  `json:"uptimeSeconds"`
	PID          int    `json:"pid"`
}

// NewServeCommand builds "serve": a loopback-only, read-only HTTP status
// endpoint over a project's artifact lake (spec.md §6).
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-dir]",
		Short: "Run a read-only loopback status endpoint over the artifact lake",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(absRoot)
			if err != nil {
				return err
			}
			lakeRoot := cfg.Output.Dir
			if !filepath.IsAbs(lakeRoot) {
				lakeRoot = filepath.Join(absRoot, lakeRoot)
			}

			if port < 1024 || port > 65535 {
				return fmt.Errorf("port must be in 1024..65535, got %d", port)
			}

			addr := fmt.Sprintf("127.0.0.1:%d", port)
			started := time.Now()

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
			})
			mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(statusResponse{
					LakePath:     lakeRoot,
					ProjectCount: countProjects(lakeRoot),
					UptimeSecs:   int64(time.Since(started).Seconds()),
					PID:          os.Getpid(),
				})
			})

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
			}

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}

			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("rpax status endpoint listening on http://"+addr))
			return httpServer.Serve(listener)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 4747, "Loopback port to bind (1024-65535)")
	return cmd
}

func countProjects(lakeRoot string) int {
	data, err := os.ReadFile(filepath.Join(lakeRoot, "projects.json"))
	if err != nil {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0
	}
	return len(entries)
}
