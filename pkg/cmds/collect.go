/*
Copyright AppsCode Inc. and Contributors

Licensed under the AppsCode Free Trial License 1.0.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://github.com/appscode/licenses/raw/1.0.0/AppsCode-Free-Trial-1.0.0.md

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmds

import (
	"fmt"
	"strings"
	"time"

	"stash.appscode.dev/ketchup/pkg/archive"
	"stash.appscode.dev/ketchup/pkg/manager"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	v "gomodules.xyz/x/version"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/klog/v2"
	"kmodules.xyz/client-go/tools/clientcmd"
)

const envPrefix = "KETCHUP"

type collectOptions struct {
	configFile string

	kubeconfig  string
	kubeContext string
	namespaces  []string

	output      string
	format      string
	compression string

	includeSecrets         bool
	includeCustomResources bool
	includeEvents          bool
	includeReplicaSets     bool
	includeEndpoints       bool
	includeLeases          bool
	crds                   []string
	raw                    bool

	verbose bool
	debug   bool

	concurrency    int
	requestTimeout time.Duration
	pageSize       int64
	qps            float64
	metricsFile    string
}

func NewCmdCollect() *cobra.Command {
	opt := collectOptions{}
	cmd := &cobra.Command{
		Use:               "collect",
		Short:             "Collect the configuration of every resource type served by the cluster",
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd.Flags(), opt.configFile); err != nil {
				return err
			}
			opt.setVerbosity(cmd)

			backupOpt, err := opt.backupOptions()
			if err != nil {
				return err
			}
			config, err := opt.restConfig()
			if err != nil {
				return err
			}
			if err := setClients(&backupOpt, config); err != nil {
				return err
			}
			return manager.NewBackupManager(backupOpt).Dump(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opt.configFile, "config", "", "Path to a yaml or json file with flag values")
	fs.StringVarP(&opt.kubeconfig, "kubeconfig", "k", "", "Path to kubeconfig file. Uses in-cluster configuration when empty")
	fs.StringVar(&opt.kubeContext, "context", "", "Kubeconfig context to use")
	fs.StringSliceVarP(&opt.namespaces, "namespaces", "n", nil, "Namespaces to collect from (default all)")
	fs.StringVarP(&opt.output, "output", "o", "/tmp", "Directory the snapshot is written to")
	fs.StringVarP(&opt.format, "format", "f", string(manager.FormatYAML), "Output format: json, yaml or both")
	fs.StringVarP(&opt.compression, "compression", "c", string(archive.ModeCompressed), "Archive mode: compressed, uncompressed or both")
	fs.BoolVarP(&opt.includeSecrets, "include-secrets", "s", false, "Collect Secrets")
	fs.BoolVarP(&opt.includeCustomResources, "include-custom-resources", "C", false, "Collect all custom resources")
	fs.BoolVarP(&opt.includeEvents, "include-events", "E", false, "Collect Events")
	fs.BoolVarP(&opt.includeReplicaSets, "include-replicasets", "R", false, "Collect ReplicaSets")
	fs.BoolVarP(&opt.includeEndpoints, "include-endpoints", "P", false, "Collect Endpoints and EndpointSlices")
	fs.BoolVarP(&opt.includeLeases, "include-leases", "L", false, "Collect Leases")
	fs.StringSliceVar(&opt.crds, "crds", nil, "Only collect these custom resources, by CRD name (e.g. certificates.cert-manager.io)")
	fs.BoolVarP(&opt.raw, "raw", "r", false, "Store documents without removing server generated fields")
	fs.BoolVar(&opt.verbose, "verbose", false, "Log per resource type progress (same as -v=3)")
	fs.BoolVar(&opt.debug, "debug", false, "Log per request detail (same as -v=6)")
	fs.IntVar(&opt.concurrency, "concurrency", manager.DefaultConcurrency, "Maximum number of concurrent list calls")
	fs.DurationVar(&opt.requestTimeout, "request-timeout", manager.DefaultRequestTimeout, "Timeout of a single resource type fetch")
	fs.Int64Var(&opt.pageSize, "page-size", manager.DefaultPageSize, "Number of items requested per list page")
	fs.Float64Var(&opt.qps, "qps", 0, "Maximum list requests per second. 0 means unlimited")
	fs.StringVar(&opt.metricsFile, "metrics-file", "", "Write collection metrics to this file in Prometheus text format")

	return cmd
}

// loadConfig fills flags that were not given on the command line from
// KETCHUP_* environment variables, then from the config file.
func loadConfig(fs *pflag.FlagSet, configFile string) error {
	cfg := viper.New()
	if configFile != "" {
		cfg.SetConfigFile(configFile)
		if err := cfg.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", configFile)
		}
		klog.Infof("Using config file: %s", cfg.ConfigFileUsed())
	}
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	var errs error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !cfg.IsSet(f.Name) {
			return
		}
		var val string
		switch f.Value.Type() {
		case "stringSlice":
			val = strings.Join(cfg.GetStringSlice(f.Name), ",")
		default:
			val = fmt.Sprintf("%v", cfg.Get(f.Name))
		}
		if err := fs.Set(f.Name, val); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "invalid value for %s", f.Name))
		}
	})
	return errs
}

func (opt collectOptions) setVerbosity(cmd *cobra.Command) {
	var level string
	switch {
	case opt.debug:
		level = "6"
	case opt.verbose:
		level = "3"
	default:
		return
	}
	f := cmd.Flag("v")
	if f == nil || f.Changed {
		return
	}
	if err := f.Value.Set(level); err != nil {
		klog.Warningf("Failed to set log verbosity: %v", err)
	}
}

func (opt collectOptions) backupOptions() (manager.BackupOptions, error) {
	format, err := manager.ParseFormat(opt.format)
	if err != nil {
		return manager.BackupOptions{}, err
	}
	mode, err := archive.ParseMode(opt.compression)
	if err != nil {
		return manager.BackupOptions{}, err
	}
	if opt.concurrency < 1 {
		return manager.BackupOptions{}, errors.Errorf("--concurrency must be at least 1, got %d", opt.concurrency)
	}
	if opt.pageSize < 1 {
		return manager.BackupOptions{}, errors.Errorf("--page-size must be at least 1, got %d", opt.pageSize)
	}

	return manager.BackupOptions{
		Collection: manager.CollectionOptions{
			IncludeSecrets:         opt.includeSecrets,
			IncludeCustomResources: opt.includeCustomResources,
			IncludeEvents:          opt.includeEvents,
			IncludeReplicaSets:     opt.includeReplicaSets,
			IncludeEndpoints:       opt.includeEndpoints,
			IncludeLeases:          opt.includeLeases,
			SpecificCRDs:           trimAll(opt.crds),
			Sanitize:               !opt.raw,
		},
		Namespaces:     trimAll(opt.namespaces),
		OutputDir:      opt.output,
		Format:         format,
		Compression:    mode,
		Concurrency:    opt.concurrency,
		RequestTimeout: opt.requestTimeout,
		PageSize:       opt.pageSize,
		QPS:            opt.qps,
		MetricsFile:    opt.metricsFile,
		Version:        v.Version.Version,
	}, nil
}

func (opt collectOptions) restConfig() (*rest.Config, error) {
	var config *rest.Config
	var err error
	if opt.kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, errors.Wrap(err, "no --kubeconfig given and not running inside a cluster")
		}
	} else {
		config, err = clientcmd.BuildConfigFromContext(opt.kubeconfig, opt.kubeContext)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load kubeconfig %s", opt.kubeconfig)
		}
	}
	// list calls are throttled by --qps instead
	config.QPS = 1e6
	config.Burst = 1e6
	config.UserAgent = "ketchup/" + v.Version.Version
	return config, nil
}

func setClients(opt *manager.BackupOptions, config *rest.Config) error {
	var err error
	if opt.Discovery, err = discovery.NewDiscoveryClientForConfig(config); err != nil {
		return errors.Wrap(err, "failed to create discovery client")
	}
	if opt.Dynamic, err = dynamic.NewForConfig(config); err != nil {
		return errors.Wrap(err, "failed to create dynamic client")
	}
	if opt.KubeClient, err = kubernetes.NewForConfig(config); err != nil {
		return errors.Wrap(err, "failed to create kubernetes client")
	}
	return nil
}

// trimAll drops blank entries and returns nil when nothing is left.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
