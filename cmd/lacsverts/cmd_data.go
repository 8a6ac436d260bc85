package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lacsverts/cmd/lacsverts/ui"
	"lacsverts/internal/api"
	"lacsverts/internal/geo"
	"lacsverts/internal/media"
	"lacsverts/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lakesCmd = &cobra.Command{
	Use:   "lakes [id]",
	Short: "List lakes and their water quality status, or show one lake",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLakes,
}

// reportsCmd groups the report subcommands
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List or submit pollution reports (requires login)",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reports",
	RunE:  runReportsList,
}

var reportsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a pollution report",
	Long: `Submit a pollution report for a lake.

Example:
  lacsverts reports submit --lake kossou --description "Mousse blanche sur la rive" --image photo.jpg`,
	RunE: runReportsSubmit,
}

var awarenessCmd = &cobra.Command{
	Use:   "awareness",
	Short: "Print the awareness articles",
	RunE:  runAwareness,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the backend and the stored session",
	RunE:  runStatus,
}

// exportCmd groups data exports
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export lake data",
}

var exportGeoJSONCmd = &cobra.Command{
	Use:   "geojson",
	Short: "Export lakes as a GeoJSON FeatureCollection",
	RunE:  runExportGeoJSON,
}

var (
	submitLake        string
	submitDescription string
	submitImage       string
	submitVideo       string
	exportOutput      string
)

func init() {
	reportsSubmitCmd.Flags().StringVar(&submitLake, "lake", "", "Lake id (required)")
	reportsSubmitCmd.Flags().StringVar(&submitDescription, "description", "", "What you observed (required)")
	reportsSubmitCmd.Flags().StringVar(&submitImage, "image", "", "Photo to attach")
	reportsSubmitCmd.Flags().StringVar(&submitVideo, "video", "", "Video to attach")
	reportsSubmitCmd.MarkFlagRequired("lake")
	reportsSubmitCmd.MarkFlagRequired("description")
	reportsCmd.AddCommand(reportsListCmd, reportsSubmitCmd)

	exportGeoJSONCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.AddCommand(exportGeoJSONCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runLakes(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	if len(args) == 1 {
		return showLake(cmd, env, args[0])
	}

	lakes, err := env.client.Lakes(commandContext(cmd))
	if err != nil {
		// Reads degrade to an empty list.
		logger.Warn("failed to fetch lakes", zap.Error(err))
	}

	table := ui.NewSimpleTable("État des lacs", "", "Id", "Nom", "Région", "Statut", "Mis à jour")
	for _, l := range lakes {
		table.AddRow(l.Status.Icon(), l.ID, l.Name, l.Region, l.Status.Label(), l.UpdatedAt.Display())
	}
	fmt.Fprintln(cmd.OutOrStdout(), table.View(ui.DefaultStyles(), "Aucun lac à afficher."))
	return nil
}

func showLake(cmd *cobra.Command, env *runtimeEnv, id string) error {
	ctx := commandContext(cmd)
	lake, err := env.client.Lake(ctx, id)
	if err != nil {
		return fmt.Errorf("lake %s: %w", id, err)
	}

	out := cmd.OutOrStdout()
	styles := ui.DefaultStyles()
	fmt.Fprintf(out, "%s %s (%s)\n", lake.Status.Icon(), lake.Name, lake.Region)
	fmt.Fprintf(out, "Statut :       %s\n", styles.StatusBadge(lake.Status))
	fmt.Fprintf(out, "Coordonnées :  %s\n", ui.FormatCoordinates(lake.Latitude, lake.Longitude))
	fmt.Fprintf(out, "Mis à jour :   %s\n", lake.UpdatedAt.Display())
	if lake.Description != "" {
		fmt.Fprintf(out, "\n%s\n", lake.Description)
	}

	reports, err := env.client.LakeReports(ctx, id)
	if err != nil {
		logger.Warn("failed to fetch lake reports", zap.Error(err))
	}
	fmt.Fprintf(out, "\nSignalements : %d\n", len(reports))
	return nil
}

func runReportsList(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	sess := env.currentSession()
	if !sess.Authenticated() {
		fmt.Fprintln(out, ui.ReportLoginPrompt)
		return nil
	}

	board, err := env.client.LoadReportsBoard(commandContext(cmd), sess.Token())
	if err != nil {
		logger.Warn("failed to fetch reports", zap.Error(err))
	}

	names := types.LakeNames(board.Lakes)
	table := ui.NewSimpleTable("Mes signalements", "Date", "Lac", "Statut", "Description", "Média")
	for _, r := range board.Reports {
		lake := names[r.LakeID]
		if lake == "" {
			lake = r.LakeID
		}
		attached := ""
		if r.HasMedia() {
			attached = "📎"
		}
		table.AddRow(r.CreatedAt.Display(), lake, string(r.Status), truncate(r.Description, 50), attached)
	}
	fmt.Fprintln(out, table.View(ui.DefaultStyles(), "Aucun signalement pour le moment."))
	return nil
}

func runReportsSubmit(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	sess := env.currentSession()
	if !sess.Authenticated() {
		fmt.Fprintln(out, ui.ReportLoginPrompt)
		return api.ErrNoSession
	}

	report := types.NewReport{
		LakeID:      strings.TrimSpace(submitLake),
		Description: strings.TrimSpace(submitDescription),
	}
	if err := report.Validate(); err != nil {
		return err
	}
	if submitImage != "" {
		if report.ImageBase64, err = media.EncodeFile(submitImage); err != nil {
			return fmt.Errorf("image: %w", err)
		}
	}
	if submitVideo != "" {
		if report.VideoBase64, err = media.EncodeFile(submitVideo); err != nil {
			return fmt.Errorf("video: %w", err)
		}
	}

	created, err := env.client.CreateReport(commandContext(cmd), sess.Token(), report)
	if err != nil {
		return fmt.Errorf("%s: %w", ui.ReportSubmitFailed, err)
	}
	fmt.Fprintf(out, "%s (%s)\n", ui.ReportSubmitted, created.ID)
	return nil
}

func runAwareness(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	posts, err := env.client.Awareness(commandContext(cmd))
	if err != nil {
		logger.Warn("failed to fetch awareness posts", zap.Error(err))
	}
	if len(posts) == 0 {
		fmt.Fprintln(out, ui.NoAwarenessContent)
		return nil
	}

	for i, p := range posts {
		if i > 0 {
			fmt.Fprintln(out, strings.Repeat("─", 40))
		}
		fmt.Fprintf(out, "%s\nPar %s · %s\n\n", p.Title, p.AuthorName, p.CreatedAt.Display())
		for _, para := range p.Paragraphs() {
			fmt.Fprintf(out, "%s\n\n", para)
		}
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config:   %s\n", resolveConfigPath())
	fmt.Fprintf(out, "Backend:  %s\n", env.client.BaseURL())

	if message, err := env.client.Ping(commandContext(cmd)); err != nil {
		fmt.Fprintf(out, "          injoignable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "          ok (%s)\n", message)
	}

	state := "non connecté"
	if env.currentSession().Authenticated() {
		state = "connecté"
	}
	fmt.Fprintf(out, "Session:  %s [%s]\n", state, env.cfg.Session.Backend)
	return nil
}

func runExportGeoJSON(cmd *cobra.Command, args []string) error {
	env, err := bootstrap()
	if err != nil {
		return err
	}
	defer env.Close()

	lakes, err := env.client.Lakes(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to fetch lakes: %w", err)
	}

	data, skipped, err := geo.Marshal(lakes)
	if err != nil {
		return err
	}
	if skipped > 0 {
		logger.Warn("lakes without valid coordinates were skipped", zap.Int("count", skipped))
	}

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d lacs exportés vers %s\n", len(lakes)-skipped, exportOutput)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
