package slots

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

const sampleProgram = `import math
from os import *

def area(r):
    return math.pi*r**2

if x > 0:
    print("pos")
elif x < 0:
    pass
else:
    y = -1
# done
`

func TestLoadProgram(t *testing.T) {
	tree, err := LoadProgram(sampleProgram)
	be.Err(t, err, nil)

	root, _ := tree.Frame(RootID)
	var types []FrameType
	for _, id := range root.Children {
		f, _ := tree.Frame(id)
		types = append(types, f.Type)
	}
	be.Equal(t, types, []FrameType{
		FrameImport, FrameFromImport, FrameBlank, FrameFuncDef, FrameBlank, FrameIf, FrameComment,
	})

	fromFrame, _ := tree.Frame(root.Children[1])
	be.Equal(t, State(fromFrame.Labels[1], -1), "{*}")

	ifFrame, _ := tree.Frame(root.Children[5])
	be.Equal(t, len(ifFrame.Joints), 2)
	be.Equal(t, State(ifFrame.Labels[0], -1), "{x}>{0}")

	elseFrame, _ := tree.Frame(ifFrame.Joints[1])
	be.Equal(t, elseFrame.Type, FrameElse)
	assign, _ := tree.Frame(elseFrame.Children[0])
	be.Equal(t, assign.Type, FrameVarAssign)
	be.Equal(t, Code(assign.Labels[0]), "y")
	be.Equal(t, Code(assign.Labels[1]), "-1")
}

func TestProgramRoundTrip(t *testing.T) {
	tree, err := LoadProgram(sampleProgram)
	be.Err(t, err, nil)
	want := `import math
from os import *

def area(r):
    return math.pi*r**2

if x>0:
    print("pos")
elif x<0:
    pass
else:
    y = -1
# done
`
	be.Equal(t, Program(tree), want)

	again, err := LoadProgram(want)
	be.Err(t, err, nil)
	be.Equal(t, Program(again), want)
}

func TestLoadProgramStatements(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"for i in range(10):\n    total += i", "for i in range(10):\n    total+=i\n"},
		{"with open(p) as f:\n    f.read()", "with open(p) as f:\n    f.read()\n"},
		{"try:\n    a()\nexcept ValueError as e:\n    b()\nfinally:\n    c()",
			"try:\n    a()\nexcept ValueError as e:\n    b()\nfinally:\n    c()\n"},
		{"while not done:\n    step()\nelse:\n    end()", "while not done:\n    step()\nelse:\n    end()\n"},
		{"def f():\n    return", "def f():\n    return\n"},
		{"import numpy as np", "import numpy as np\n"},
		{"x == 1", "x==1\n"},
		{"#", "#\n"},
		{"if a:\n    b()\n\nelse:\n    c()", "if a:\n    b()\nelse:\n    c()\n"},
		{"if x\ny()", "if x:\ny()\n"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tree, err := LoadProgram(tt.source)
			be.Err(t, err, nil)
			be.Equal(t, Program(tree), tt.want)
		})
	}
}

func TestLoadProgramErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unexpected indent", "  x = 1", ErrIndentation},
		{"bad unindent", "if a:\n    b()\n  c()", ErrIndentation},
		{"tab", "if a:\n\tb()", ErrIndentation},
		{"orphan else", "else:\n    a()", ErrOrphanJoint},
		{"else after return", "return\nelse:\n    a()", ErrOrphanJoint},
		{"elif after else", "if a:\n    b()\nelse:\n    c()\nelif d:\n    e()", ErrOrphanJoint},
		{"header without colon", "if x\n    y()", ErrIndentation},
		{"else without colon", "if x:\n    y()\nelse\n    z()", ErrIndentation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProgram(tt.source)
			be.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text   string
		typ    FrameType
		labels []string
	}{
		{"if x:", FrameIf, []string{"x"}},
		{"else:", FrameElse, nil},
		{"except:", FrameExcept, []string{""}},
		{"for k, v in d.items():", FrameFor, []string{"k,v", "d.items()"}},
		{"x = y = 1", FrameVarAssign, []string{"x", "y=1"}},
		{"x += 1", FrameFuncCall, []string{"x += 1"}},
		{"x == 1", FrameFuncCall, []string{"x == 1"}},
		{"return x", FrameReturn, []string{"x"}},
		{"# note", FrameComment, []string{"note"}},
		{"elsewhere()", FrameFuncCall, []string{"elsewhere()"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			st := classify(tt.text)
			be.Equal(t, st.typ, tt.typ)
			be.Equal(t, st.labels, tt.labels)
		})
	}
}

func TestClassifyOpensOnlyWithColon(t *testing.T) {
	for _, text := range []string{"if x:", "while x :", "for i in r:", "def f():", "with a as b:", "try:", "except E:"} {
		be.True(t, classify(text).opens)
	}
	for _, text := range []string{"if x", "while x", "for i in r", "def f()", "with a as b", "else", "except E", "x = 1"} {
		be.True(t, !classify(text).opens)
	}
}
