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
	"strings"

	"k8s.io/klog/v2"
)

// CollectionOptions decides which optional resource families a run collects
// and whether documents are sanitized. It is not modified after a run starts.
type CollectionOptions struct {
	IncludeSecrets         bool
	IncludeCustomResources bool
	IncludeEvents          bool
	IncludeReplicaSets     bool
	IncludeEndpoints       bool
	IncludeLeases          bool
	// SpecificCRDs, when not nil, is the only set of custom resources collected.
	// IncludeCustomResources is ignored in that case.
	SpecificCRDs []string
	Sanitize     bool
}

// OptionalResources lists the enabled optional resource families, as recorded
// in the collection summary.
func (o CollectionOptions) OptionalResources() []string {
	var flags []string
	if o.IncludeSecrets {
		flags = append(flags, "secrets")
	}
	if o.IncludeCustomResources {
		flags = append(flags, "custom_resources")
	}
	if o.SpecificCRDs != nil {
		flags = append(flags, fmt.Sprintf("specific_crds: [%s]", strings.Join(o.SpecificCRDs, ", ")))
	}
	if o.IncludeEvents {
		flags = append(flags, "events")
	}
	if o.IncludeReplicaSets {
		flags = append(flags, "replicasets")
	}
	if o.IncludeEndpoints {
		flags = append(flags, "endpoints")
	}
	if o.IncludeLeases {
		flags = append(flags, "leases")
	}
	return flags
}

func logCollectionPlan(o CollectionOptions) {
	klog.Infof("Collection plan:")
	klog.Infof("  - Core resources: always collected")
	logFamily("Secrets", o.IncludeSecrets, "--include-secrets")
	switch {
	case o.SpecificCRDs != nil:
		klog.Infof("  - Custom Resources: only %v", o.SpecificCRDs)
	default:
		logFamily("Custom Resources", o.IncludeCustomResources, "--include-custom-resources")
	}
	logFamily("Events", o.IncludeEvents, "--include-events")
	logFamily("ReplicaSets", o.IncludeReplicaSets, "--include-replicasets")
	logFamily("Endpoints", o.IncludeEndpoints, "--include-endpoints")
	logFamily("Leases", o.IncludeLeases, "--include-leases")
	if !o.Sanitize {
		klog.Infof("  - Raw mode: documents are stored unsanitized")
	}
}

func logFamily(name string, enabled bool, flag string) {
	if enabled {
		klog.Infof("  - %s: enabled", name)
		return
	}
	klog.V(3).Infof("  - %s: skipped (use %s to enable)", name, flag)
}
