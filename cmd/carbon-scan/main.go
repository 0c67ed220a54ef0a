package main

import (
	"context"
	"encoding/json"
	goflag "flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/opscart/k8s-carbon-estimator/pkg/carbon"
	"github.com/opscart/k8s-carbon-estimator/pkg/config"
	"github.com/opscart/k8s-carbon-estimator/pkg/datasource"
	"github.com/opscart/k8s-carbon-estimator/pkg/gridintensity"
	"github.com/opscart/k8s-carbon-estimator/pkg/instancespecs"
	"github.com/opscart/k8s-carbon-estimator/pkg/models"
	"github.com/opscart/k8s-carbon-estimator/pkg/query"
)

const version = "0.1.0"

var (
	// Scan flags
	resourceType string
	namespace    string
	nodeName     string
	podName      string
	shape        string
	aggregation  string
	region       string
	configFile   string
	outputFormat string
	verbose      bool

	cfg *config.Config
)

func main() {
	klog.InitFlags(nil)
	cfg = config.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "carbon-scan",
		Short: "Kubernetes carbon footprint estimator",
		Long:  `Estimate energy consumption and CO2 emissions of cluster, namespace, node and pod resources from their requests and instance power characteristics.`,
		RunE:  runScan,
	}

	rootCmd.Flags().StringVarP(&resourceType, "scope", "s", "cluster", "Scope: cluster, namespace, node, pod")
	rootCmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Restrict to a namespace")
	rootCmd.Flags().StringVar(&nodeName, "node", "", "Restrict to a node (node scope)")
	rootCmd.Flags().StringVar(&podName, "pod", "", "Restrict to a pod (pod scope)")
	rootCmd.Flags().StringVar(&shape, "shape", "table", "Output shape: timeseries, table, single-value")
	rootCmd.Flags().StringVar(&aggregation, "aggregation", "sum", "Aggregation for single-value: sum, avg, max, min")
	rootCmd.Flags().StringVar(&region, "region", "", "Grid region for live carbon intensity (e.g. DE, US-CAL-CISO)")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("carbon-scan %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	if verbose {
		_ = goflag.Set("v", "3")
	}

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return err
		}
	}
	if region != "" {
		cfg.GridRegion = region
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	q := &models.Query{
		QueryType:    shape,
		ResourceType: resourceType,
		Aggregation:  aggregation,
		Filters:      buildFilters(),
	}
	query.ApplyDefaults(q)
	if err := query.Validate(q); err != nil {
		return err
	}

	repo, err := datasource.NewKubernetesRepository()
	if err != nil {
		return err
	}

	engine := carbon.NewEngine(
		carbon.NewCalculator(cfg, gridProvider(), instancespecs.NewCatalogProvider()),
		repo,
		engineOptions()...,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	frames, err := engine.HandleQuery(ctx, q)
	if err != nil {
		return err
	}

	return printFrames(frames)
}

func buildFilters() map[string]interface{} {
	filters := make(map[string]interface{})
	if namespace != "" {
		filters["namespace"] = namespace
	}
	if nodeName != "" {
		filters["node"] = nodeName
	}
	if podName != "" {
		filters["pod"] = podName
	}
	return filters
}

func gridProvider() gridintensity.Provider {
	if cfg.GridAPIKey != "" {
		return gridintensity.NewElectricityMapsProvider(cfg)
	}
	return gridintensity.NewStaticProvider(cfg.DefaultGridIntensity)
}

// engineOptions picks a usage source for display enrichment: Prometheus when
// configured, the in-cluster metrics-server otherwise. Neither is required
// for estimation, so unavailability only costs the usage fields.
func engineOptions() []carbon.EngineOption {
	if cfg.PrometheusURL != "" {
		usage, err := datasource.NewPrometheusUsageSource(cfg.PrometheusURL)
		if err != nil {
			fmt.Printf("[WARN] Prometheus usage source unavailable: %v\n", err)
			return nil
		}
		return []carbon.EngineOption{carbon.WithUsageSource(usage)}
	}

	usage, err := datasource.NewMetricsServerUsageSource()
	if err != nil {
		fmt.Printf("[WARN] metrics-server usage source unavailable: %v\n", err)
		return nil
	}
	return []carbon.EngineOption{carbon.WithUsageSource(usage)}
}

func printFrames(frames []*models.Frame) error {
	if outputFormat == "json" {
		data, err := json.MarshalIndent(frames, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(frames) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for _, frame := range frames {
		fmt.Printf("[%s] %s\n", frame.Type, frame.RefID)
		for _, field := range frame.Fields {
			unit := ""
			if field.Unit != "" {
				unit = fmt.Sprintf(" (%s)", field.Unit)
			}
			fmt.Printf("  %s%s:", field.Name, unit)
			for _, v := range field.Values {
				switch value := v.(type) {
				case float64:
					fmt.Printf(" %.6f", value)
				case time.Time:
					fmt.Printf(" %s", value.Format(time.RFC3339))
				default:
					fmt.Printf(" %v", value)
				}
			}
			fmt.Println()
		}
	}
	return nil
}
