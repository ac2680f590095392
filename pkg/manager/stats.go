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

// Stats are instance counts derived from a Result.
type Stats struct {
	// ClusterKinds counts cluster scoped instances per kind.
	ClusterKinds map[string]int
	// Namespaces holds per namespace counts. Every processed namespace is
	// present, including empty ones.
	Namespaces map[string]NamespaceStats
	// KindTotals counts instances per kind over both scopes.
	KindTotals      map[string]int
	TotalCluster    int
	TotalNamespaced int
}

type NamespaceStats struct {
	Total int
	Kinds map[string]int
}

func (s Stats) Total() int {
	return s.TotalCluster + s.TotalNamespaced
}

// ComputeStats folds a Result into Stats. It only reads the Result.
func ComputeStats(r *Result) Stats {
	s := Stats{
		ClusterKinds: map[string]int{},
		Namespaces:   map[string]NamespaceStats{},
		KindTotals:   map[string]int{},
	}
	for kind, items := range r.Cluster {
		s.ClusterKinds[kind] = len(items)
		s.KindTotals[kind] += len(items)
		s.TotalCluster += len(items)
	}

	for _, ns := range r.Namespaces {
		s.Namespaces[ns] = NamespaceStats{Kinds: map[string]int{}}
	}
	for ns, kinds := range r.Namespaced {
		nss := NamespaceStats{Kinds: map[string]int{}}
		for kind, items := range kinds {
			nss.Kinds[kind] = len(items)
			nss.Total += len(items)
			s.KindTotals[kind] += len(items)
		}
		s.Namespaces[ns] = nss
		s.TotalNamespaced += nss.Total
	}
	return s
}
