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
	"path/filepath"
	"time"

	"stash.appscode.dev/ketchup/pkg/catalog"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

const (
	ToolName          = "ketchup"
	SummaryFileName   = "collection-summary.yaml"
	ResourceTypesFile = "resource-types.yaml"
)

type Summary struct {
	CollectionInfo   CollectionInfo            `json:"collection_info"`
	ClusterSummary   ClusterSummary            `json:"cluster_summary"`
	ClusterResources ResourceCounts            `json:"cluster_resources"`
	NamespaceDetails map[string]ResourceCounts `json:"namespace_details"`
	CollectionErrors []CollectionError         `json:"collection_errors,omitempty"`
}

type CollectionInfo struct {
	Timestamp                 string   `json:"timestamp"`
	Tool                      string   `json:"tool"`
	Version                   string   `json:"version"`
	RunID                     string   `json:"run_id"`
	Sanitized                 bool     `json:"sanitized"`
	OptionalResourcesIncluded []string `json:"optional_resources_included"`
}

type ClusterSummary struct {
	TotalNamespaces          int            `json:"total_namespaces"`
	TotalClusterResources    int            `json:"total_cluster_resources"`
	TotalNamespacedResources int            `json:"total_namespaced_resources"`
	TotalResources           int            `json:"total_resources"`
	ResourceTypeCounts       map[string]int `json:"resource_type_counts"`
}

type ResourceCounts struct {
	TotalResources int            `json:"total_resources"`
	ResourceTypes  map[string]int `json:"resource_types"`
}

type CollectionError struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	Error     string `json:"error"`
}

// SummaryInfo identifies the run a summary describes.
type SummaryInfo struct {
	Timestamp time.Time
	Version   string
	RunID     string
}

// NewSummary builds the collection summary from the run's statistics.
func NewSummary(stats Stats, r *Result, opt CollectionOptions, info SummaryInfo) Summary {
	s := Summary{
		CollectionInfo: CollectionInfo{
			Timestamp:                 info.Timestamp.UTC().Format(time.RFC3339),
			Tool:                      ToolName,
			Version:                   info.Version,
			RunID:                     info.RunID,
			Sanitized:                 opt.Sanitize,
			OptionalResourcesIncluded: opt.OptionalResources(),
		},
		ClusterSummary: ClusterSummary{
			TotalNamespaces:          len(stats.Namespaces),
			TotalClusterResources:    stats.TotalCluster,
			TotalNamespacedResources: stats.TotalNamespaced,
			TotalResources:           stats.Total(),
			ResourceTypeCounts:       stats.KindTotals,
		},
		ClusterResources: ResourceCounts{
			TotalResources: stats.TotalCluster,
			ResourceTypes:  stats.ClusterKinds,
		},
		NamespaceDetails: map[string]ResourceCounts{},
	}
	if s.CollectionInfo.OptionalResourcesIncluded == nil {
		s.CollectionInfo.OptionalResourcesIncluded = []string{}
	}
	for ns, nss := range stats.Namespaces {
		s.NamespaceDetails[ns] = ResourceCounts{
			TotalResources: nss.Total,
			ResourceTypes:  nss.Kinds,
		}
	}
	for _, f := range r.Failures {
		s.CollectionErrors = append(s.CollectionErrors, CollectionError{
			Kind:      f.Kind,
			Namespace: f.Namespace,
			Error:     f.Err.Error(),
		})
	}
	return s
}

// WriteSummary stores the summary as YAML at the root of dataDir.
func WriteSummary(storage Writer, dataDir string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to serialize summary")
	}
	fileName := filepath.Join(dataDir, SummaryFileName)
	klog.Infof("Creating collection summary: %s", fileName)
	return errors.Wrap(storage.Write(fileName, data), "failed to write summary")
}

// WriteResourceTypes stores the discovered catalog, so a snapshot records
// which resource types the API server served.
func WriteResourceTypes(storage Writer, dataDir string, c catalog.Catalog) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to serialize resource types")
	}
	return errors.Wrap(storage.Write(filepath.Join(dataDir, ResourceTypesFile), data), "failed to write resource types")
}
