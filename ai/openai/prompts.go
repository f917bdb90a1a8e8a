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

package openai

import (
	"fmt"
)

const keywordResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "keywords": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "term": {"type": "string", "minLength": 2},
          "importance": {"type": "integer", "minimum": 1, "maximum": 10}
        },
        "required": ["term", "importance"],
        "additionalProperties": false
      }
    }
  },
  "required": ["keywords"],
  "additionalProperties": false
}`

const keywordPromptTemplate = `You index sections of vehicle owner manuals. Extract the search keywords a driver
would use to find the given section and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Keep each term in the language of the text (usually Korean). Do not translate.
- Terms are nouns or short noun phrases of 1-3 words: parts, systems, warning lights, procedures.
- Never return particles, verbs, or generic words such as "차량", "사용", "경우".
- Importance is an integer from 1 (peripheral) to 10 (the section is about this).
- Return at most %d terms. If nothing qualifies, return "keywords": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "타이어 공기압 점검 정기적으로 타이어 공기압을 점검하세요 적정 공기압을 유지하는 것이 중요합니다"
Output:
{
  "keywords": [
    {"term":"타이어 공기압","importance":10},
    {"term":"타이어","importance":8},
    {"term":"공기압 점검","importance":7}
  ]
}

Example:
Input: "엔진 경고등 엔진 경고등이 켜지면 가까운 블루핸즈에서 점검을 받으십시오"
Output:
{
  "keywords": [
    {"term":"엔진 경고등","importance":10},
    {"term":"블루핸즈","importance":6}
  ]
}`

// buildSystemPrompt creates the system prompt with the schema and term cap embedded.
func buildSystemPrompt(maxKeywords int) string {
	return fmt.Sprintf(keywordPromptTemplate, keywordResponseSchema, maxKeywords)
}
