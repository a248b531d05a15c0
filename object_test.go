package tsruntime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPersonTeacher constructs the Person/Teacher class pair from spec.md
// scenario 2 directly as vtables, the way compiled class declarations would
// be lowered.
func buildPersonTeacher(out *[]string) (person, teacher *Vtable) {
	person = &Vtable{
		Name: "Person",
		Members: []Member{
			{Name: "name", Kind: MemberField},
			{Name: "age", Kind: MemberField},
			{Name: "say", Kind: MemberMethod, MethodFunc: func(self *Object, _ []any) (any, error) {
				name, _ := self.GetField(0)
				age, _ := self.GetField(1)
				*out = append(*out, fmt.Sprintf("hello my name is %s, I'm %d old", name, age))
				return nil, nil
			}},
		},
	}
	teacher = &Vtable{
		Name:  "Teacher",
		Super: person,
		Members: []Member{
			{Name: "name", Kind: MemberField},
			{Name: "age", Kind: MemberField},
			{Name: "say", Kind: MemberMethod},
			{Name: "subject", Kind: MemberField},
		},
	}
	teacher.Members[2] = Member{Name: "say", Kind: MemberMethod, MethodFunc: func(self *Object, args []any) (any, error) {
		if _, err := self.CallSuper(teacher, 2, args); err != nil {
			return nil, err
		}
		subject, _ := self.GetField(3)
		*out = append(*out, fmt.Sprintf("I teach %s", subject))
		return nil, nil
	}}
	return person, teacher
}

func TestInheritanceScenarioSuperCallOrder(t *testing.T) {
	var out []string
	_, teacher := buildPersonTeacher(&out)

	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, teacher)
	require.NoError(t, err)

	require.NoError(t, obj.SetField(0, "tom"))
	require.NoError(t, obj.SetField(1, 30))
	require.NoError(t, obj.SetField(3, "math"))

	_, err = obj.CallMethod(2, nil)
	require.NoError(t, err)

	require.Equal(t, []string{
		"hello my name is tom, I'm 30 old",
		"I teach math",
	}, out)
}

func TestIsSubclassOf(t *testing.T) {
	var out []string
	person, teacher := buildPersonTeacher(&out)
	require.True(t, teacher.IsSubclassOf(person))
	require.True(t, teacher.IsSubclassOf(teacher))
	require.False(t, person.IsSubclassOf(teacher))
}

func TestDispatchErrorsOnBadMemberAccess(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	vt := &Vtable{Name: "Empty", Members: []Member{{Name: "f", Kind: MemberField}}}
	obj, err := NewInstance(h, vt)
	require.NoError(t, err)

	_, err = obj.CallMethod(0, nil)
	require.ErrorIs(t, err, ErrMemberNotAMethod)

	_, err = obj.GetField(5)
	require.ErrorIs(t, err, ErrMemberIndexOutOfRange)

	var nilObj *Object
	_, err = nilObj.GetField(0)
	require.ErrorIs(t, err, ErrNilObject)
}

func TestInterfaceCallDispatchesThroughFatPointerCell(t *testing.T) {
	iface := InterfaceMeta{
		Name: "Greeter",
		Methods: []Member{
			{Name: "greet", Kind: MemberMethod, MethodFunc: func(self *Object, _ []any) (any, error) {
				return "hi", nil
			}},
		},
	}
	vt := &Vtable{Name: "Widget", Ifaces: []InterfaceMeta{iface}}
	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, vt)
	require.NoError(t, err)

	result, err := obj.InterfaceCall("Greeter", 0, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", result)

	_, err = obj.InterfaceCall("Unknown", 0, nil)
	require.ErrorIs(t, err, ErrInterfaceNotImplemented)
}

func TestRefcountReleaseFreesSlotAndInvalidatesWeakRefs(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	vt := &Vtable{Name: "Leaf"}
	obj, err := NewInstance(h, vt)
	require.NoError(t, err)

	weak := h.weakTable.New(obj)
	require.True(t, obj.Release())

	_, err = weak.Deref()
	require.ErrorIs(t, err, ErrWeakReferentGone)
}
