package gradebook

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// courseListSchema validates a stored course list before it is accepted. It
// admits both the current record shape and the legacy rubric-list shape the
// migrator understands; grade values may be the current entry object or a
// legacy bare number/string/null.
const courseListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string"},
      "description": {"type": "string"},
      "students": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id"],
          "properties": {
            "id": {"type": "string"},
            "name": {"type": "string"},
            "surname": {"type": "string"}
          }
        }
      },
      "categories": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "name"],
          "properties": {
            "id": {"type": "string"},
            "name": {"type": "string"},
            "weight": {"type": "number"},
            "parentId": {"type": ["string", "null"]}
          }
        }
      },
      "assignments": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "name"],
          "properties": {
            "id": {"type": "string"},
            "categoryId": {"type": "string"},
            "name": {"type": "string"},
            "type": {"enum": ["numeric", "rubric"]},
            "criteria": {
              "type": "array",
              "items": {
                "type": "object",
                "properties": {
                  "id": {"type": "string"},
                  "name": {"type": "string"},
                  "maxPoints": {"type": "number"}
                }
              }
            }
          }
        }
      },
      "rubrics": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "name"],
          "properties": {
            "id": {"type": "string"},
            "name": {"type": "string"},
            "weight": {"type": "number"}
          }
        }
      },
      "grades": {
        "type": "object",
        "additionalProperties": {
          "type": "object",
          "additionalProperties": {
            "anyOf": [
              {"type": "object"},
              {"type": "number"},
              {"type": "string"},
              {"type": "null"}
            ]
          }
        }
      }
    }
  }
}`

// ValidateCourseList checks a raw stored document against the course-list
// schema and reports every violation in one error.
func ValidateCourseList(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(courseListSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validating course list: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("stored course list is invalid: %s", strings.Join(problems, "; "))
}
