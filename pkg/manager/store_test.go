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
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"stash.appscode.dev/ketchup/pkg/catalog"
	"stash.appscode.dev/ketchup/pkg/manager"
	"stash.appscode.dev/ketchup/pkg/sanitizers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"sigs.k8s.io/yaml"
)

type memoryWriter struct {
	files map[string][]byte
	fail  map[string]bool
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{files: map[string][]byte{}, fail: map[string]bool{}}
}

func (w *memoryWriter) Write(key string, value []byte) error {
	if w.fail[key] {
		return errors.New("disk full")
	}
	w.files[key] = value
	return nil
}

func doc(kind, namespace, name string) manager.CollectedResource {
	meta := map[string]interface{}{}
	if name != "" {
		meta["name"] = name
	}
	if namespace != "" {
		meta["namespace"] = namespace
	}
	return manager.CollectedResource{
		Type:      catalog.ResourceType{Kind: kind},
		Namespace: namespace,
		Object: map[string]interface{}{
			"apiVersion": "v1",
			"kind":       kind,
			"metadata":   meta,
		},
	}
}

func testResult() *manager.Result {
	return &manager.Result{
		Cluster: map[string][]manager.CollectedResource{
			"Namespace": {doc("Namespace", "", "default")},
		},
		Namespaced: map[string]map[string][]manager.CollectedResource{
			"default": {
				"ConfigMap":           {doc("ConfigMap", "default", "settings"), doc("ConfigMap", "default", "")},
				"widgets.example.com": {doc("Widget", "default", "w1")},
			},
		},
		Namespaces: []string{"default"},
	}
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name   string
		format manager.Format
		want   []string
	}{
		{
			name:   "yaml",
			format: manager.FormatYAML,
			want: []string{
				"/out/cluster/namespace/default.yaml",
				"/out/namespaces/default/configmap/settings.yaml",
				"/out/namespaces/default/widgets.example.com/w1.yaml",
			},
		},
		{
			name:   "both",
			format: manager.FormatBoth,
			want: []string{
				"/out/cluster/namespace/default.json",
				"/out/cluster/namespace/default.yaml",
				"/out/namespaces/default/configmap/settings.json",
				"/out/namespaces/default/configmap/settings.yaml",
				"/out/namespaces/default/widgets.example.com/w1.json",
				"/out/namespaces/default/widgets.example.com/w1.yaml",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newMemoryWriter()
			saved, err := manager.NewStore(w, tt.format).Save("/out", testResult())
			require.NoError(t, err)
			assert.Equal(t, 3, saved, "unnamed instances are skipped")

			var got []string
			for k := range w.files {
				got = append(got, k)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestStore_SaveIsolatesWriteErrors(t *testing.T) {
	w := newMemoryWriter()
	w.fail["/out/namespaces/default/configmap/settings.yaml"] = true

	saved, err := manager.NewStore(w, manager.FormatYAML).Save("/out", testResult())
	require.Error(t, err)
	assert.Equal(t, 2, saved)
	assert.Contains(t, w.files, "/out/cluster/namespace/default.yaml")
	assert.Contains(t, w.files, "/out/namespaces/default/widgets.example.com/w1.yaml")

	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	var we *manager.WriteError
	assert.True(t, errors.As(errs[0], &we))
}

func TestStore_SaveIsolatesEncodeErrors(t *testing.T) {
	r := testResult()
	bad := doc("ConfigMap", "default", "bad")
	bad.Object["data"] = map[string]interface{}{"fn": func() {}}
	r.Namespaced["default"]["ConfigMap"] = append(r.Namespaced["default"]["ConfigMap"], bad)

	w := newMemoryWriter()
	saved, err := manager.NewStore(w, manager.FormatJSON).Save("/out", r)
	require.Error(t, err)
	assert.Equal(t, 3, saved)
	var ee *manager.EncodeError
	assert.True(t, errors.As(err, &ee))
	assert.Contains(t, w.files, "/out/namespaces/default/configmap/settings.json")
}

func TestEncodeRoundTrip(t *testing.T) {
	raw := map[string]interface{}{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata": map[string]interface{}{
			"name":            "web",
			"namespace":       "default",
			"uid":             "1234",
			"resourceVersion": "99",
			"labels":          map[string]interface{}{"app": "web"},
			"annotations":     map[string]interface{}{"note": "multi\nline: value"},
		},
		"spec": map[string]interface{}{
			"replicas": int64(3),
			"paused":   false,
			"selector": map[string]interface{}{"matchLabels": map[string]interface{}{"app": "web"}},
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"containers": []interface{}{
						map[string]interface{}{"name": "web", "image": "nginx:1.25", "args": []interface{}{"-g", "daemon off;"}},
					},
					"nodeSelector": nil,
				},
			},
		},
		"status": map[string]interface{}{"replicas": int64(3)},
	}
	sanitized := sanitizers.NewMetadataSanitizer().Sanitize(raw)

	for _, f := range []manager.Format{manager.FormatJSON, manager.FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := manager.Encode(sanitized, f)
			require.NoError(t, err)

			var got map[string]interface{}
			if f == manager.FormatJSON {
				require.NoError(t, json.Unmarshal(data, &got))
			} else {
				require.NoError(t, yaml.Unmarshal(data, &got))
			}
			// both decoders return float64 numbers
			want := map[string]interface{}{}
			b, err := json.Marshal(sanitized)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(b, &want))
			assert.Equal(t, want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "YAML", "both"} {
		_, err := manager.ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := manager.ParseFormat("toml")
	assert.Error(t, err)
}

func TestNewSummary(t *testing.T) {
	r := testResult()
	r.Failures = []*manager.FetchError{{Kind: "Event", Namespace: "default", Err: errors.New("timeout")}}
	opt := manager.CollectionOptions{IncludeSecrets: true, SpecificCRDs: []string{"widgets.example.com"}, Sanitize: true}

	s := manager.NewSummary(manager.ComputeStats(r), r, opt, manager.SummaryInfo{Version: "v0.1.0", RunID: "run"})
	assert.Equal(t, 1, s.ClusterSummary.TotalNamespaces)
	assert.Equal(t, 1, s.ClusterSummary.TotalClusterResources)
	assert.Equal(t, 3, s.ClusterSummary.TotalNamespacedResources)
	assert.Equal(t, 4, s.ClusterSummary.TotalResources)
	assert.Equal(t, map[string]int{"ConfigMap": 2, "widgets.example.com": 1}, s.NamespaceDetails["default"].ResourceTypes)
	assert.Equal(t, []string{"secrets", "specific_crds: [widgets.example.com]"}, s.CollectionInfo.OptionalResourcesIncluded)
	assert.Equal(t, []manager.CollectionError{{Kind: "Event", Namespace: "default", Error: "timeout"}}, s.CollectionErrors)

	w := newMemoryWriter()
	require.NoError(t, manager.WriteSummary(w, "/out", s))
	data := string(w.files["/out/"+manager.SummaryFileName])
	assert.True(t, strings.Contains(data, "total_resources: 4"), data)
	assert.True(t, strings.Contains(data, "tool: ketchup"), data)
}
