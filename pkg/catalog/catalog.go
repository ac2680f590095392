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

package catalog

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/klog/v2"
)

// Scope tells whether a resource type lives once per cluster or once per namespace.
type Scope string

const (
	ScopeUnknown    Scope = ""
	ScopeCluster    Scope = "Cluster"
	ScopeNamespaced Scope = "Namespaced"
)

// ResourceType identifies one API resource type as served by the API server
// at discovery time.
type ResourceType struct {
	Kind         string `json:"kind"`
	GroupVersion string `json:"apiVersion"`
	// Resource is the plural resource name used in request paths.
	Resource string `json:"resource"`
	Scope    Scope  `json:"scope"`
}

// builtinGroups are the API groups served by kube-apiserver itself. Resource
// types of any other group are named by their CRD-style qualified name.
var builtinGroups = map[string]bool{
	"":                             true,
	"admissionregistration.k8s.io": true,
	"apiextensions.k8s.io":         true,
	"apiregistration.k8s.io":       true,
	"apps":                         true,
	"authentication.k8s.io":        true,
	"authorization.k8s.io":         true,
	"autoscaling":                  true,
	"batch":                        true,
	"certificates.k8s.io":          true,
	"coordination.k8s.io":          true,
	"discovery.k8s.io":             true,
	"events.k8s.io":                true,
	"extensions":                   true,
	"flowcontrol.apiserver.k8s.io": true,
	"internal.apiserver.k8s.io":    true,
	"networking.k8s.io":            true,
	"node.k8s.io":                  true,
	"policy":                       true,
	"rbac.authorization.k8s.io":    true,
	"resource.k8s.io":              true,
	"scheduling.k8s.io":            true,
	"storage.k8s.io":               true,
	"storagemigration.k8s.io":      true,
}

// GroupVersionResource parses the descriptor into the triple used by the
// dynamic client.
func (r ResourceType) GroupVersionResource() (schema.GroupVersionResource, error) {
	gv, err := schema.ParseGroupVersion(r.GroupVersion)
	if err != nil {
		return schema.GroupVersionResource{}, errors.Wrapf(err, "invalid group version %q for kind %s", r.GroupVersion, r.Kind)
	}
	return gv.WithResource(r.Resource), nil
}

// Group returns the API group, empty for the core group.
func (r ResourceType) Group() string {
	if i := strings.Index(r.GroupVersion, "/"); i >= 0 {
		return r.GroupVersion[:i]
	}
	return ""
}

// QualifiedName is the name used to key collected instances. Built-in types
// use their kind, e.g. "Deployment". Everything else uses the CRD name
// <resource>.<group>, e.g. "widgets.example.com".
func (r ResourceType) QualifiedName() string {
	group := r.Group()
	if builtinGroups[group] {
		return r.Kind
	}
	return r.Resource + "." + group
}

func (r ResourceType) String() string {
	return r.Kind + " (" + r.GroupVersion + ")"
}

// Classify returns the scope of a resource type from the metadata already on
// the descriptor. A type whose scope is not known is an error and must not be
// collected.
func Classify(r ResourceType) (Scope, error) {
	switch r.Scope {
	case ScopeCluster, ScopeNamespaced:
		return r.Scope, nil
	default:
		return ScopeUnknown, errors.Errorf("unable to determine scope of %s", r)
	}
}

// Catalog is the full set of resource types discovered in one run.
type Catalog []ResourceType

// Partition splits the catalog by scope. Types without a known scope are
// logged and left out of both partitions.
func (c Catalog) Partition() (cluster, namespaced []ResourceType) {
	for _, r := range c {
		scope, err := Classify(r)
		if err != nil {
			klog.Warningf("Skipping resource type: %v", err)
			continue
		}
		if scope == ScopeCluster {
			cluster = append(cluster, r)
		} else {
			namespaced = append(namespaced, r)
		}
	}
	return cluster, namespaced
}

func (c Catalog) sort() {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].GroupVersion != c[j].GroupVersion {
			return c[i].GroupVersion < c[j].GroupVersion
		}
		return c[i].Kind < c[j].Kind
	})
}
