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

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// serverAssignedFields are metadata fields set by the API server that can not
// be reapplied.
var serverAssignedFields = []string{
	"uid",
	"resourceVersion",
	"selfLink",
	"creationTimestamp",
	"generation",
	"managedFields",
}

type metadataSanitizer struct{}

// NewMetadataSanitizer strips server assigned metadata and the status
// subtree so the document can be applied to recreate the resource.
func NewMetadataSanitizer() Sanitizer {
	return metadataSanitizer{}
}

func (s metadataSanitizer) Sanitize(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := deepCopyMap(in)
	if _, ok := out["metadata"].(map[string]interface{}); ok {
		for _, field := range serverAssignedFields {
			unstructured.RemoveNestedField(out, "metadata", field)
		}
	}
	delete(out, "status")
	return out
}

func deepCopyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue copies maps and slices. Scalars are immutable and are shared.
func deepCopyValue(in interface{}) interface{} {
	switch v := in.(type) {
	case map[string]interface{}:
		return deepCopyMap(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = deepCopyValue(v[i])
		}
		return out
	default:
		return v
	}
}
