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

	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// NamespaceLister returns the names of all namespaces in the cluster.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context) ([]string, error)
}

type namespaceLister struct {
	kubeClient kubernetes.Interface
}

func NewNamespaceLister(kubeClient kubernetes.Interface) NamespaceLister {
	return namespaceLister{kubeClient: kubeClient}
}

func (l namespaceLister) ListNamespaces(ctx context.Context) ([]string, error) {
	var names []string
	var next string
	for {
		list, err := l.kubeClient.CoreV1().Namespaces().List(ctx, metav1.ListOptions{
			Limit:    DefaultPageSize,
			Continue: next,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list namespaces")
		}
		for _, ns := range list.Items {
			names = append(names, ns.Name)
		}
		next = list.Continue
		if next == "" {
			break
		}
	}
	klog.V(3).Infof("Found %d namespaces", len(names))
	return names, nil
}

// ResolveNamespaces returns the namespaces a run collects from. With no
// request every namespace in the cluster is used, otherwise the request is
// verified against the cluster.
func ResolveNamespaces(ctx context.Context, lister NamespaceLister, requested []string) ([]string, error) {
	available, err := lister.ListNamespaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		klog.Infof("No namespaces specified, collecting from all namespaces")
		if len(available) == 0 {
			return nil, ErrNoValidNamespaces
		}
		return available, nil
	}
	return VerifyNamespaces(requested, available)
}

// VerifyNamespaces keeps the requested namespaces that exist, in request
// order and without duplicates. Missing namespaces are dropped with a
// warning. ErrNoValidNamespaces is returned when nothing is left.
func VerifyNamespaces(requested, available []string) ([]string, error) {
	exists := make(map[string]bool, len(available))
	for _, ns := range available {
		exists[ns] = true
	}

	var verified []string
	seen := map[string]bool{}
	for _, ns := range requested {
		if seen[ns] {
			continue
		}
		seen[ns] = true
		if !exists[ns] {
			klog.Warningf("Namespace %q does not exist, skipping", ns)
			continue
		}
		verified = append(verified, ns)
	}
	if len(verified) == 0 {
		return nil, ErrNoValidNamespaces
	}
	return verified, nil
}
