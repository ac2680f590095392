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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

type fakeDiscoveryClient struct {
	lists []*metav1.APIResourceList
	err   error
	calls int
}

func (d *fakeDiscoveryClient) ServerPreferredResources() ([]*metav1.APIResourceList, error) {
	d.calls++
	return d.lists, d.err
}

var listVerbs = []string{"get", "list", "watch"}

func testResourceLists() []*metav1.APIResourceList {
	return []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "namespaces", Kind: "Namespace", Namespaced: false, Verbs: listVerbs},
				{Name: "componentstatuses", Kind: "ComponentStatus", Namespaced: false, Verbs: listVerbs},
				{Name: "pods", Kind: "Pod", Namespaced: true, Verbs: listVerbs},
				{Name: "secrets", Kind: "Secret", Namespaced: true, Verbs: listVerbs},
				{Name: "events", Kind: "Event", Namespaced: true, Verbs: listVerbs},
				{Name: "configmaps", Kind: "ConfigMap", Namespaced: true, Verbs: listVerbs},
			},
		},
		{
			GroupVersion: "example.com/v1",
			APIResources: []metav1.APIResource{
				{Name: "widgets", Kind: "Widget", Namespaced: true, Verbs: listVerbs},
				{Name: "gadgets", Kind: "Gadget", Namespaced: true, Verbs: listVerbs},
			},
		},
	}
}

var listKinds = map[schema.GroupVersionResource]string{
	{Version: "v1", Resource: "namespaces"}:                    "NamespaceList",
	{Version: "v1", Resource: "componentstatuses"}:             "ComponentStatusList",
	{Version: "v1", Resource: "pods"}:                          "PodList",
	{Version: "v1", Resource: "secrets"}:                       "SecretList",
	{Version: "v1", Resource: "events"}:                        "EventList",
	{Version: "v1", Resource: "configmaps"}:                    "ConfigMapList",
	{Group: "example.com", Version: "v1", Resource: "widgets"}: "WidgetList",
	{Group: "example.com", Version: "v1", Resource: "gadgets"}: "GadgetList",
}

func newObject(apiVersion, kind, namespace, name string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":            name,
			"uid":             "uid-" + name,
			"resourceVersion": "42",
		},
		"status": map[string]interface{}{"phase": "Active"},
	}}
	if namespace != "" {
		obj.SetNamespace(namespace)
	}
	return obj
}

func testObjects() []runtime.Object {
	return []runtime.Object{
		newObject("v1", "Namespace", "", "default"),
		newObject("v1", "Namespace", "", "kube-system"),
		newObject("v1", "ComponentStatus", "", "scheduler"),
		newObject("v1", "Pod", "default", "nginx"),
		newObject("v1", "Pod", "default", "api"),
		newObject("v1", "Pod", "kube-system", "coredns"),
		newObject("v1", "Secret", "default", "token"),
		newObject("v1", "Event", "default", "nginx.17a"),
		newObject("v1", "ConfigMap", "kube-system", "coredns"),
		newObject("example.com/v1", "Widget", "default", "w1"),
		newObject("example.com/v1", "Gadget", "default", "g1"),
	}
}

func newDynamicClient(objs ...runtime.Object) *dynamicfake.FakeDynamicClient {
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds, objs...)
}
