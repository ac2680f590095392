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
	"time"

	"stash.appscode.dev/ketchup/pkg/catalog"
	"stash.appscode.dev/ketchup/pkg/sanitizers"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

const DefaultConcurrency = 8

// Collector runs the two collection phases of a run: cluster scoped types
// first, then namespaced types in every target namespace.
type Collector struct {
	discovery   catalog.DiscoveryClient
	fetcher     ResourceFetcher
	sanitizer   sanitizers.Sanitizer
	options     CollectionOptions
	concurrency int
	metrics     *Metrics
}

func NewCollector(disc catalog.DiscoveryClient, fetcher ResourceFetcher, opt CollectionOptions, concurrency int, metrics *Metrics) *Collector {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Collector{
		discovery:   disc,
		fetcher:     fetcher,
		sanitizer:   sanitizers.NewSanitizer(opt.Sanitize),
		options:     opt,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// unit is one resource type to fetch, in one namespace or cluster wide.
type unit struct {
	rt        catalog.ResourceType
	namespace string
}

// Collect discovers the served resource types once and collects every
// included type. namespaces must already be verified to exist. Only an empty
// namespace list or a discovery failure fail the run; a failing resource type
// is logged, recorded in Result.Failures and treated as having no instances.
func (c *Collector) Collect(ctx context.Context, namespaces []string) (*Result, error) {
	if len(namespaces) == 0 {
		return nil, ErrNoValidNamespaces
	}

	cat, err := catalog.Discover(c.discovery)
	if err != nil {
		return nil, err
	}
	c.metrics.observeDiscovery(cat)

	clusterTypes, namespacedTypes := cat.Partition()
	clusterTypes = c.included(clusterTypes)
	namespacedTypes = c.included(namespacedTypes)
	result := newResult(cat, namespaces)

	klog.Infof("Collecting %d cluster scoped resource types", len(clusterTypes))
	units := make([]unit, 0, len(clusterTypes))
	for _, rt := range clusterTypes {
		units = append(units, unit{rt: rt})
	}
	if err := c.run(ctx, units, result); err != nil {
		return nil, err
	}
	klog.Infof("Collected %d cluster scoped resource types", len(result.Cluster))

	klog.Infof("Collecting %d namespaced resource types from %d namespace(s)", len(namespacedTypes), len(namespaces))
	units = make([]unit, 0, len(namespacedTypes)*len(namespaces))
	for _, ns := range namespaces {
		for _, rt := range namespacedTypes {
			units = append(units, unit{rt: rt, namespace: ns})
		}
	}
	if err := c.run(ctx, units, result); err != nil {
		return nil, err
	}

	result.sortFailures()
	return result, nil
}

func (c *Collector) included(types []catalog.ResourceType) []catalog.ResourceType {
	var out []catalog.ResourceType
	for _, rt := range types {
		if !ShouldCollect(rt.QualifiedName(), c.options) {
			klog.V(3).Infof("Skipping %s resource type %s", rt.Scope, rt.QualifiedName())
			continue
		}
		out = append(out, rt)
	}
	return out
}

// run fetches all units with at most c.concurrency in flight. Units never
// fail the group; only cancellation of ctx does.
func (c *Collector) run(ctx context.Context, units []unit, result *Result) error {
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range units {
		u := units[i]
		g.Go(func() error {
			c.collect(ctx, u, result)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Wrap(ctx.Err(), "collection interrupted")
}

func (c *Collector) collect(ctx context.Context, u unit, result *Result) {
	kind := u.rt.QualifiedName()
	start := time.Now()
	items, err := c.fetcher.Fetch(ctx, u.rt, u.namespace)
	c.metrics.observeFetch(u.rt, time.Since(start), len(items), err)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{Kind: kind, Namespace: u.namespace, Err: err}
		}
		klog.Warningf("Skipping %s: %v", kind, fe)
		result.addFailure(fe)
		return
	}
	if len(items) == 0 {
		klog.V(3).Infof("  %s namespace=%q (0 items)", kind, u.namespace)
		return
	}

	docs := make([]CollectedResource, 0, len(items))
	for _, item := range items {
		docs = append(docs, CollectedResource{
			Type:      u.rt,
			Namespace: u.namespace,
			Object:    c.sanitizer.Sanitize(item.Object),
		})
	}
	klog.V(3).Infof("  %s namespace=%q (%d items)", kind, u.namespace, len(docs))
	result.add(u.namespace, kind, docs)
}
