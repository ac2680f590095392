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

package sanitizers

// Sanitizer transforms a generic resource document before it is stored.
// Implementations never modify their input.
type Sanitizer interface {
	Sanitize(in map[string]interface{}) map[string]interface{}
}

// NewSanitizer returns the metadata sanitizer, or a pass-through sanitizer
// for raw collection when enabled is false.
func NewSanitizer(enabled bool) Sanitizer {
	if !enabled {
		return NewRawSanitizer()
	}
	return NewMetadataSanitizer()
}

type rawSanitizer struct{}

func NewRawSanitizer() Sanitizer {
	return rawSanitizer{}
}

func (s rawSanitizer) Sanitize(in map[string]interface{}) map[string]interface{} {
	return in
}
