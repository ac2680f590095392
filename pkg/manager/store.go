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
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

// Format selects the file format(s) documents are stored in.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatBoth Format = "both"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatBoth:
		return f, nil
	default:
		return "", errors.Errorf("invalid format %q, use json, yaml or both", s)
	}
}

func (f Format) encodings() []Format {
	if f == FormatBoth {
		return []Format{FormatJSON, FormatYAML}
	}
	return []Format{f}
}

// Encode serializes one document as indented JSON or as YAML.
func Encode(doc interface{}, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, errors.Errorf("unsupported encoding %q", f)
	}
}

type Writer interface {
	Write(string, []byte) error
}

type fileWriter struct{}

func NewFileWriter() Writer {
	return fileWriter{}
}

func (w fileWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Store writes collected documents as one file per instance.
type Store struct {
	storage Writer
	format  Format
}

func NewStore(storage Writer, format Format) *Store {
	return &Store{storage: storage, format: format}
}

// Save writes every named instance of the result below dataDir:
//
//	cluster/<kind>/<name>.<ext>
//	namespaces/<namespace>/<kind>/<name>.<ext>
//
// Instances without a name are skipped. A failing instance does not stop
// its siblings; all failures are returned together. Save returns the number
// of instances stored.
func (s *Store) Save(dataDir string, r *Result) (int, error) {
	var saved int
	var errs error

	for _, kind := range sortedKeys(r.Cluster) {
		n, err := s.saveKind(filepath.Join(dataDir, "cluster"), kind, r.Cluster[kind])
		saved += n
		errs = multierr.Append(errs, err)
	}
	for _, ns := range r.Namespaces {
		kinds := r.Namespaced[ns]
		for _, kind := range sortedKeys(kinds) {
			n, err := s.saveKind(filepath.Join(dataDir, "namespaces", ns), kind, kinds[kind])
			saved += n
			errs = multierr.Append(errs, err)
		}
	}
	return saved, errs
}

func (s *Store) saveKind(prefix, kind string, items []CollectedResource) (int, error) {
	var saved int
	var errs error
	for _, item := range items {
		name := item.Name()
		if name == "" {
			continue
		}
		stored := true
		for _, f := range s.format.encodings() {
			fileName := filepath.Join(prefix, strings.ToLower(kind), name) + "." + string(f)
			if err := s.storeItem(fileName, item.Object, f); err != nil {
				klog.Errorf("Failed to store %s %s: %v", kind, name, err)
				errs = multierr.Append(errs, err)
				stored = false
			}
		}
		if stored {
			saved++
		}
	}
	klog.V(5).Infof("Saved %d %s resources under %s", saved, kind, prefix)
	return saved, errs
}

func (s *Store) storeItem(fileName string, in interface{}, f Format) error {
	data, err := Encode(in, f)
	if err != nil {
		return &EncodeError{Path: fileName, Err: err}
	}
	if err := s.storage.Write(fileName, data); err != nil {
		return &WriteError{Path: fileName, Err: err}
	}
	return nil
}

func sortedKeys(m map[string][]CollectedResource) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
