package gradebook_test

import (
	"strings"
	"testing"

	"github.com/gestornotas/gradebook/internal/gradebook"
)

func TestImportStudents(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantFirst gradebook.Student
	}{
		{
			name:      "commas",
			input:     "Ana,García\nLuis,Pérez\n",
			wantCount: 2,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "semicolons",
			input:     "Ana;García\nLuis;Pérez",
			wantCount: 2,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "spanish header skipped",
			input:     "Nombre,Apellidos\nAna,García",
			wantCount: 1,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "english header skipped",
			input:     "First Name;Last Name\nAna;García",
			wantCount: 1,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "fields trimmed",
			input:     " Ana ; García \n",
			wantCount: 1,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "blank lines and short rows skipped",
			input:     "\nAna,García\n\nsolo-un-campo\nLuis,Pérez\n",
			wantCount: 2,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "header only",
			input:     "nombre,apellidos\n",
			wantCount: 0,
		},
		{
			name:      "header heuristic only applies to first line",
			input:     "Ana,García\nNombre,Artístico\n",
			wantCount: 2,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
		{
			name:      "extra fields ignored",
			input:     "Ana,García,ana@example.com\n",
			wantCount: 1,
			wantFirst: gradebook.Student{Name: "Ana", Surname: "García"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := gradebook.NewCourse("Prueba", "")
			count, err := gradebook.ImportStudents(c, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ImportStudents() error = %v", err)
			}
			if count != tt.wantCount {
				t.Fatalf("count = %d, want %d", count, tt.wantCount)
			}
			if len(c.Students) != tt.wantCount {
				t.Fatalf("students = %d, want %d", len(c.Students), tt.wantCount)
			}
			if tt.wantCount > 0 {
				got := c.Students[0]
				if got.Name != tt.wantFirst.Name || got.Surname != tt.wantFirst.Surname {
					t.Errorf("first student = %s %s, want %s %s",
						got.Name, got.Surname, tt.wantFirst.Name, tt.wantFirst.Surname)
				}
				if got.ID == "" {
					t.Error("imported student should get an id")
				}
			}
		})
	}
}
