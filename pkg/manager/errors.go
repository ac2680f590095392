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
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoValidNamespaces is returned when none of the requested namespaces
// exist. No collection work is started.
var ErrNoValidNamespaces = errors.New("no valid namespaces found")

// FetchError reports that one resource type could not be listed. It only
// affects that type, in that namespace.
type FetchError struct {
	Kind      string
	Namespace string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("failed to collect %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("failed to collect %s in namespace %s: %v", e.Kind, e.Namespace, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// EncodeError reports a document that could not be serialized.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// WriteError reports a document that could not be stored.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
