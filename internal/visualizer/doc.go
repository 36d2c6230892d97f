// Package visualizer renders analysis summaries to PNG charts with gonum/plot.
//
// Every visual setting lives in a Style value handed to NewRenderer, so no
// plotting state is shared between renderers. Chart file names are fixed
// per topic (see Chart.FileName) and each image is written as soon as it
// is drawn.
//
// Usage:
//
//	style, err := visualizer.StyleFromConfig(cfg.Chart)
//	r := visualizer.NewRenderer(style, logger)
//	paths, err := r.RenderAll(ctx, chartsDir, visualizer.JobsFor(summary), cfg.Pipeline.Workers)
package visualizer
