package main

import (
	"context"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config  string `type:"path" env:"RFM_CONFIG" help:"YAML configuration file."`
	EnvFile string `name:"env-file" default:".env" help:"Dotenv file read before the environment."`
	BaseURL string `name:"base-url" help:"Segmentation backend URL (overrides base_url)."`
	Mock    bool   `help:"Serve built-in demo data instead of calling the backend."`
	Output  string `short:"o" enum:"text,json,yaml" default:"text" help:"Output format (text, json, yaml)."`

	Serve     serveCmd     `cmd:"" help:"Run the dashboard HTTP server."`
	Lookup    lookupCmd    `cmd:"" help:"Look up a customer by code."`
	Calculate calculateCmd `cmd:"" help:"Aggregate metrics for one cluster, year and function."`
	Clusters  clustersCmd  `cmd:"" help:"Compare one metric across clusters, optionally exporting a chart."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("rfmctl"),
		kong.Description("RFM customer segmentation dashboard."),
		kong.UsageOnError(),
	)
	ctx.BindTo(context.Background(), (*context.Context)(nil))
	err := ctx.Run(&root)
	ctx.FatalIfErrorf(err)
}
