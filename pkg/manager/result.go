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
	"sort"
	"sync"

	"stash.appscode.dev/ketchup/pkg/catalog"
)

// CollectedResource is one retrieved document. Object is the generic
// document exactly as returned by the API server, sanitized if requested.
type CollectedResource struct {
	Type      catalog.ResourceType
	Namespace string
	Object    map[string]interface{}
}

// Name returns metadata.name, or "" when the document has none.
func (r CollectedResource) Name() string {
	meta, ok := r.Object["metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := meta["name"].(string)
	return name
}

// Result holds everything collected in one run. Kinds without instances are
// not present.
type Result struct {
	Catalog catalog.Catalog
	// Cluster maps kind to cluster scoped instances.
	Cluster map[string][]CollectedResource
	// Namespaced maps namespace, then kind, to instances.
	Namespaced map[string]map[string][]CollectedResource
	// Namespaces lists every namespace that was processed, in request order.
	Namespaces []string
	// Failures lists resource types whose fetch failed and were recorded as
	// having no instances.
	Failures []*FetchError

	mu sync.Mutex
}

func newResult(c catalog.Catalog, namespaces []string) *Result {
	return &Result{
		Catalog:    c,
		Cluster:    map[string][]CollectedResource{},
		Namespaced: map[string]map[string][]CollectedResource{},
		Namespaces: namespaces,
	}
}

func (r *Result) add(namespace, kind string, items []CollectedResource) {
	if len(items) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if namespace == "" {
		r.Cluster[kind] = items
		return
	}
	kinds, ok := r.Namespaced[namespace]
	if !ok {
		kinds = map[string][]CollectedResource{}
		r.Namespaced[namespace] = kinds
	}
	kinds[kind] = items
}

func (r *Result) addFailure(err *FetchError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, err)
}

func (r *Result) sortFailures() {
	sort.Slice(r.Failures, func(i, j int) bool {
		if r.Failures[i].Namespace != r.Failures[j].Namespace {
			return r.Failures[i].Namespace < r.Failures[j].Namespace
		}
		return r.Failures[i].Kind < r.Failures[j].Kind
	})
}
