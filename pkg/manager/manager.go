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

package manager

import (
	"context"
	"path/filepath"
	"time"

	"stash.appscode.dev/ketchup/pkg/archive"
	"stash.appscode.dev/ketchup/pkg/catalog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

const dirTimeLayout = "2006-01-02-15-04-05"

type BackupManager interface {
	Dump(ctx context.Context) error
}

type BackupOptions struct {
	Discovery  catalog.DiscoveryClient
	Dynamic    dynamic.Interface
	KubeClient kubernetes.Interface

	Collection CollectionOptions
	// Namespaces to collect from. Empty means all namespaces.
	Namespaces []string

	// OutputDir is the parent of the timestamped snapshot directory.
	OutputDir   string
	Format      Format
	Compression archive.Mode

	Concurrency    int
	RequestTimeout time.Duration
	PageSize       int64
	// QPS limits list requests per second. Zero disables the limit.
	QPS         float64
	MetricsFile string
	Version     string

	Storage Writer
	Clock   clock.PassiveClock
}

type backupManager struct {
	BackupOptions
}

func NewBackupManager(opt BackupOptions) BackupManager {
	if opt.Storage == nil {
		opt.Storage = NewFileWriter()
	}
	if opt.Clock == nil {
		opt.Clock = clock.RealClock{}
	}
	if opt.Format == "" {
		opt.Format = FormatYAML
	}
	if opt.Compression == "" {
		opt.Compression = archive.ModeCompressed
	}
	return backupManager{BackupOptions: opt}
}

// DataDir returns the snapshot directory for a run started at t.
func DataDir(outputDir string, t time.Time) string {
	return filepath.Join(outputDir, ToolName+"-"+t.UTC().Format(dirTimeLayout))
}

// Dump takes a snapshot of the cluster. Namespace resolution and discovery
// failures abort the run before anything is written. Failures to store
// single documents are returned after the summary and archive are written.
func (opt backupManager) Dump(ctx context.Context) error {
	started := opt.Clock.Now()

	namespaces, err := ResolveNamespaces(ctx, NewNamespaceLister(opt.KubeClient), opt.Namespaces)
	if err != nil {
		return err
	}
	klog.Infof("Will collect from %d namespace(s): %v", len(namespaces), namespaces)
	logCollectionPlan(opt.Collection)

	var metrics *Metrics
	if opt.MetricsFile != "" {
		metrics = NewMetrics()
	}
	var limiter *rate.Limiter
	if opt.QPS > 0 {
		burst := int(opt.QPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opt.QPS), burst)
	}
	fetcher := NewFetcher(opt.Dynamic, opt.PageSize, opt.RequestTimeout, limiter)
	collector := NewCollector(opt.Discovery, fetcher, opt.Collection, opt.Concurrency, metrics)

	result, err := collector.Collect(ctx, namespaces)
	if err != nil {
		return err
	}

	dataDir := DataDir(opt.OutputDir, started)
	klog.Infof("Writing resources to %s", dataDir)
	store := NewStore(opt.Storage, opt.Format)
	saved, storeErr := store.Save(dataDir, result)
	klog.Infof("Stored %d resources", saved)

	if err := WriteResourceTypes(opt.Storage, dataDir, result.Catalog); err != nil {
		return err
	}
	stats := ComputeStats(result)
	summary := NewSummary(stats, result, opt.Collection, SummaryInfo{
		Timestamp: started,
		Version:   opt.Version,
		RunID:     uuid.New().String(),
	})
	if err := WriteSummary(opt.Storage, dataDir, summary); err != nil {
		return err
	}
	if len(result.Failures) > 0 {
		klog.Warningf("%d resource type(s) could not be collected, see %s", len(result.Failures), SummaryFileName)
	}

	archivePath, err := archive.Archive(dataDir, opt.Compression)
	if err != nil {
		return err
	}
	if archivePath != "" {
		klog.Infof("Archive created: %s", archivePath)
	}
	if opt.Compression != archive.ModeCompressed {
		klog.Infof("Files saved to: %s", dataDir)
	}

	if err := metrics.WriteToTextfile(opt.MetricsFile); err != nil {
		return err
	}
	if storeErr != nil {
		return errors.Wrapf(storeErr, "%d resource file(s) could not be stored", len(multierr.Errors(storeErr)))
	}
	klog.Infof("Collection completed successfully")
	return nil
}
