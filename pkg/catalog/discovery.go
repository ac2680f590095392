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
	"fmt"
	"strings"

	"gomodules.xyz/sets"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/klog/v2"
)

// DiscoveryClient is the part of discovery.DiscoveryInterface used to build
// the catalog.
type DiscoveryClient interface {
	ServerPreferredResources() ([]*metav1.APIResourceList, error)
}

// DiscoveryError is returned when the API server's discovery endpoint can not
// produce a usable catalog. It is fatal to a run.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover API resources: %v", e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Discover queries the API server once and returns every listable resource
// type it serves, in its preferred version. Subresources and types that do
// not support both get and list are skipped. When only some API groups fail
// discovery, the remaining groups still form the catalog.
func Discover(client DiscoveryClient) (Catalog, error) {
	lists, err := client.ServerPreferredResources()
	if err != nil {
		if !discovery.IsGroupDiscoveryFailedError(err) || len(lists) == 0 {
			return nil, &DiscoveryError{Err: err}
		}
		klog.Warningf("Partial API discovery, unavailable groups are skipped: %v", err)
	}

	var result Catalog
	seen := map[string]ResourceType{}
	for _, list := range lists {
		if list == nil {
			continue
		}
		gv, err := schema.ParseGroupVersion(list.GroupVersion)
		if err != nil {
			return nil, &DiscoveryError{Err: err}
		}
		for _, r := range list.APIResources {
			if isSubResource(r.Name) || !hasGetListVerbs(r.Verbs) {
				continue
			}
			if r.Kind == "" {
				return nil, &DiscoveryError{Err: fmt.Errorf("resource %q in %s has no kind", r.Name, list.GroupVersion)}
			}
			rt := ResourceType{
				Kind:         r.Kind,
				GroupVersion: gv.String(),
				Resource:     r.Name,
				Scope:        ScopeCluster,
			}
			if r.Namespaced {
				rt.Scope = ScopeNamespaced
			}
			// the same kind can be served by several built-in groups, e.g.
			// Event in the core group and in events.k8s.io
			name := rt.QualifiedName()
			if prev, ok := seen[name]; ok {
				klog.V(3).Infof("Skipping %s, %s is already served as %s", rt, name, prev)
				continue
			}
			seen[name] = rt
			result = append(result, rt)
		}
	}
	result.sort()
	klog.V(3).Infof("Discovered %d resource types", len(result))
	return result, nil
}

func isSubResource(name string) bool {
	return strings.ContainsRune(name, '/')
}

func hasGetListVerbs(verbs []string) bool {
	return sets.NewString(verbs...).HasAll("get", "list")
}
