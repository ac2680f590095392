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

import "strings"

// ShouldCollect decides whether instances of the named resource type are
// collected. Rules are checked in order and the first match wins:
//
//  1. kinds that can not be reproduced are never collected
//  2. Secrets follow IncludeSecrets
//  3. high volume kinds follow their own toggle
//  4. names containing a dot are custom resources: SpecificCRDs, when set,
//     must contain the name (case-insensitive), otherwise IncludeCustomResources
//  5. everything else is collected
func ShouldCollect(kind string, opt CollectionOptions) bool {
	switch kind {
	case "ComponentStatus", "Binding":
		return false
	case "Secret":
		return opt.IncludeSecrets
	case "Event":
		return opt.IncludeEvents
	case "ReplicaSet":
		return opt.IncludeReplicaSets
	case "Endpoints", "EndpointSlice":
		return opt.IncludeEndpoints
	case "Lease":
		return opt.IncludeLeases
	}

	if strings.Contains(kind, ".") {
		if opt.SpecificCRDs != nil {
			for _, crd := range opt.SpecificCRDs {
				if strings.EqualFold(kind, crd) {
					return true
				}
			}
			return false
		}
		return opt.IncludeCustomResources
	}
	return true
}
