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
	"sort"
	"time"

	"stash.appscode.dev/ketchup/pkg/catalog"

	"golang.org/x/time/rate"
	kerr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/klog/v2"
)

const (
	DefaultPageSize       = 250
	DefaultRequestTimeout = 60 * time.Second
)

// ResourceFetcher lists every live instance of one resource type, either
// cluster wide (namespace "") or in one namespace. Retrying callers wrap it.
type ResourceFetcher interface {
	Fetch(ctx context.Context, rt catalog.ResourceType, namespace string) ([]unstructured.Unstructured, error)
}

// Fetcher is a ResourceFetcher backed by the dynamic client. It has no
// knowledge of concrete kinds.
type Fetcher struct {
	client   dynamic.Interface
	pageSize int64
	timeout  time.Duration
	limiter  *rate.Limiter
}

// NewFetcher returns a Fetcher listing pageSize items per request. Every call
// to Fetch is bounded by timeout. A nil limiter does not throttle requests.
func NewFetcher(client dynamic.Interface, pageSize int64, timeout time.Duration, limiter *rate.Limiter) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Fetcher{
		client:   client,
		pageSize: pageSize,
		timeout:  timeout,
		limiter:  limiter,
	}
}

// Fetch returns the instances sorted by namespace, then name. Any transport,
// decode or timeout error is returned as a *FetchError. A resource type that
// is no longer served yields no instances.
func (f *Fetcher) Fetch(ctx context.Context, rt catalog.ResourceType, namespace string) ([]unstructured.Unstructured, error) {
	gvr, err := rt.GroupVersionResource()
	if err != nil {
		return nil, &FetchError{Kind: rt.QualifiedName(), Namespace: namespace, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var ri dynamic.ResourceInterface
	if namespace != "" {
		ri = f.client.Resource(gvr).Namespace(namespace)
	} else {
		ri = f.client.Resource(gvr)
	}

	var items []unstructured.Unstructured
	var next string
	for {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, &FetchError{Kind: rt.QualifiedName(), Namespace: namespace, Err: err}
			}
		}
		klog.V(5).Infof("Listing %s namespace=%q continue=%q", gvr, namespace, next)
		resp, err := ri.List(ctx, metav1.ListOptions{
			Limit:    f.pageSize,
			Continue: next,
		})
		if err != nil {
			if kerr.IsNotFound(err) {
				return nil, nil
			}
			return nil, &FetchError{Kind: rt.QualifiedName(), Namespace: namespace, Err: err}
		}
		items = append(items, resp.Items...)

		next = resp.GetContinue()
		if next == "" {
			break
		}
	}

	for i := range items {
		// list items may come back without type information
		if items[i].GetAPIVersion() == "" {
			items[i].SetAPIVersion(rt.GroupVersion)
		}
		if items[i].GetKind() == "" {
			items[i].SetKind(rt.Kind)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].GetNamespace() != items[j].GetNamespace() {
			return items[i].GetNamespace() < items[j].GetNamespace()
		}
		return items[i].GetName() < items[j].GetName()
	})
	return items, nil
}
