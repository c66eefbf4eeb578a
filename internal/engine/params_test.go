package engine_test

import (
	"testing"

	"github.com/practissac/go-certificate/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestReadParameters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  engine.ParameterSet
	}{
		{
			name:  "Empty query",
			query: "",
			want:  engine.ParameterSet{},
		},
		{
			name:  "Values are trimmed and decoded",
			query: "?nombre=%20Ana+P%C3%A9rez%20&horas=+120+&codigo=ABC123",
			want: engine.ParameterSet{
				"nombre": "Ana Pérez",
				"horas":  "120",
				"codigo": "ABC123",
			},
		},
		{
			name:  "Blank values are not provided",
			query: "nombre=%20%20&tipo_doc=&num_doc=12345678",
			want:  engine.ParameterSet{"num_doc": "12345678"},
		},
		{
			name:  "Unknown keys are dropped",
			query: "foo=bar&fecha=2025-10-15",
			want:  engine.ParameterSet{"fecha": "2025-10-15"},
		},
		{
			name:  "First value wins",
			query: "codigo=A&codigo=B",
			want:  engine.ParameterSet{"codigo": "A"},
		},
		{
			name:  "Invalid escapes are kept as written",
			query: "nombre=%zz&horas=100%&num_doc=a%zz%20b%2&fecha_inicio=2025-10-10",
			want: engine.ParameterSet{
				"nombre":       "%zz",
				"horas":        "100%",
				"num_doc":      "a%zz b%2",
				"fecha_inicio": "2025-10-10",
			},
		},
		{
			name:  "Semicolons are value text",
			query: "nombre=Juan;P%C3%A9rez&horas=100%&codigo=X1",
			want: engine.ParameterSet{
				"nombre": "Juan;Pérez",
				"horas":  "100%",
				"codigo": "X1",
			},
		},
		{
			name:  "Encoded keys and bare keys",
			query: "n%6Fmbre=Ana&codigo&&tipo_doc=CE",
			want: engine.ParameterSet{
				"nombre":   "Ana",
				"tipo_doc": "CE",
			},
		},
		{
			name:  "Invalid UTF-8 is replaced",
			query: "nombre=Ana%FF",
			want:  engine.ParameterSet{"nombre": "Ana\uFFFD"},
		},
		{
			name:  "Blank first value still wins",
			query: "codigo=&codigo=B",
			want:  engine.ParameterSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ReadParameters(tt.query))
		})
	}
}

func TestParameterSet_GetHas(t *testing.T) {
	p := engine.ReadParameters("nombre=Ana&horas=%20")

	assert.True(t, p.Has("nombre"))
	assert.Equal(t, "Ana", p.Get("nombre"))
	assert.False(t, p.Has("horas"))
	assert.Equal(t, "", p.Get("horas"))
	assert.Equal(t, "", p.Get("codigo"))
}
