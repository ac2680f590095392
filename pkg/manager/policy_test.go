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

package manager_test

import (
	"testing"

	"stash.appscode.dev/ketchup/pkg/manager"
)

func TestShouldCollect(t *testing.T) {
	all := manager.CollectionOptions{
		IncludeSecrets:         true,
		IncludeCustomResources: true,
		IncludeEvents:          true,
		IncludeReplicaSets:     true,
		IncludeEndpoints:       true,
		IncludeLeases:          true,
	}
	none := manager.CollectionOptions{}

	tests := []struct {
		name string
		kind string
		opt  manager.CollectionOptions
		want bool
	}{
		{name: "component status is denied", kind: "ComponentStatus", opt: all, want: false},
		{name: "binding is denied", kind: "Binding", opt: all, want: false},
		{name: "secret enabled", kind: "Secret", opt: all, want: true},
		{name: "secret disabled", kind: "Secret", opt: none, want: false},
		{name: "secret ignores other toggles", kind: "Secret", opt: manager.CollectionOptions{IncludeEvents: true, IncludeCustomResources: true}, want: false},
		{name: "event enabled", kind: "Event", opt: manager.CollectionOptions{IncludeEvents: true}, want: true},
		{name: "event disabled", kind: "Event", opt: none, want: false},
		{name: "replicaset enabled", kind: "ReplicaSet", opt: manager.CollectionOptions{IncludeReplicaSets: true}, want: true},
		{name: "replicaset disabled", kind: "ReplicaSet", opt: none, want: false},
		{name: "endpoints enabled", kind: "Endpoints", opt: manager.CollectionOptions{IncludeEndpoints: true}, want: true},
		{name: "endpointslice enabled", kind: "EndpointSlice", opt: manager.CollectionOptions{IncludeEndpoints: true}, want: true},
		{name: "endpointslice disabled", kind: "EndpointSlice", opt: none, want: false},
		{name: "lease enabled", kind: "Lease", opt: manager.CollectionOptions{IncludeLeases: true}, want: true},
		{name: "lease disabled", kind: "Lease", opt: manager.CollectionOptions{IncludeEvents: true}, want: false},
		{name: "custom resource enabled", kind: "widgets.example.com", opt: manager.CollectionOptions{IncludeCustomResources: true}, want: true},
		{name: "custom resource disabled", kind: "widgets.example.com", opt: none, want: false},
		{
			name: "allow-listed custom resource",
			kind: "widgets.example.com",
			opt:  manager.CollectionOptions{SpecificCRDs: []string{"widgets.example.com"}},
			want: true,
		},
		{
			name: "allow-list is case-insensitive",
			kind: "Widgets.Example.COM",
			opt:  manager.CollectionOptions{SpecificCRDs: []string{"widgets.example.com"}},
			want: true,
		},
		{
			name: "allow-list overrides blanket toggle",
			kind: "gadgets.example.com",
			opt:  manager.CollectionOptions{IncludeCustomResources: true, SpecificCRDs: []string{"widgets.example.com"}},
			want: false,
		},
		{
			name: "empty allow-list excludes every custom resource",
			kind: "widgets.example.com",
			opt:  manager.CollectionOptions{IncludeCustomResources: true, SpecificCRDs: []string{}},
			want: false,
		},
		{name: "allow-list does not affect built-ins", kind: "Deployment", opt: manager.CollectionOptions{SpecificCRDs: []string{"widgets.example.com"}}, want: true},
		{name: "built-in always collected", kind: "ConfigMap", opt: none, want: true},
		{name: "unknown dotless kind collected", kind: "Widget", opt: none, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := manager.ShouldCollect(tt.kind, tt.opt); got != tt.want {
				t.Errorf("ShouldCollect(%q) = %v, want %v", tt.kind, got, tt.want)
			}
			if again := manager.ShouldCollect(tt.kind, tt.opt); again != tt.want {
				t.Errorf("ShouldCollect(%q) changed its answer on a second call", tt.kind)
			}
		})
	}
}

func TestSpecificCRDsExcludeUnlistedCustomResources(t *testing.T) {
	kinds := []string{"gadgets.example.com", "certificates.cert-manager.io", "a.b"}
	for _, blanket := range []bool{true, false} {
		opt := manager.CollectionOptions{IncludeCustomResources: blanket, SpecificCRDs: []string{"widgets.example.com"}}
		for _, kind := range kinds {
			if manager.ShouldCollect(kind, opt) {
				t.Errorf("ShouldCollect(%q) with blanket=%v = true, want false", kind, blanket)
			}
		}
	}
}
