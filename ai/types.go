// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

// ExtractedKeyword is a domain term identified in a manual section.
type ExtractedKeyword struct {
	// Term is the keyword as it appears in the text, e.g. "타이어 공기압".
	Term string

	// Importance is a score from 1-10 indicating how central the term is
	// to the section. Higher scores = more important.
	Importance int
}

// Terms returns the bare keyword strings in order.
func Terms(keywords []ExtractedKeyword) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = k.Term
	}
	return out
}
