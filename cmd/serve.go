package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbecker/rdtrack/internal/api"
	"github.com/mbecker/rdtrack/internal/backup"
	"github.com/mbecker/rdtrack/internal/store"
	webui "github.com/mbecker/rdtrack/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and embedded web UI",
	Long:  "Start an HTTP server exposing the REST API under /api/v1 and the\nembedded dashboard UI at /. By default it listens on port 8080.",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := viper.GetInt("port")

		s, err := getStore()
		if err != nil {
			return err
		}

		handler, err := serveHandler(s, getBackupManager())
		if err != nil {
			return err
		}

		addr := fmt.Sprintf(":%d", port)
		fmt.Printf("Serving rdtrack at http://localhost%s\n", addr)
		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// serveHandler mounts the API under /api/ and the embedded UI at /.
func serveHandler(s store.Store, bm *backup.Manager) (http.Handler, error) {
	uiHandler, err := webui.Handler()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize UI handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewServer(s, bm).Router())
	mux.Handle("/", uiHandler)
	return mux, nil
}
