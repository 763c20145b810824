// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-research/internal/server"
	"github.com/pdiddy/wiki-research/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve research, history, and saved articles as a JSON API",
	Long: `Serve starts an HTTP server exposing the research pipeline and the local
store under /api. Cross-origin requests are allowed from the configured
origins, or from any origin when none are configured. The server stops
gracefully on interrupt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if !viper.GetBool("verbose") {
			gin.SetMode(gin.ReleaseMode)
		}

		client := newClient(cfg)
		srv := server.New(newResearcher(client), client, st, cfg.Serve, logger.Named("server"))
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
