package validate

import (
	"testing"

	"buildcheck/internal/diag"
)

func usingTaskDoc(t *testing.T, usingTask string) *Document {
	t.Helper()
	return checkSource(t, "test.targets", `<Project>
  `+usingTask+`
  <Target Name="Build"/>
</Project>`, builtinOpts())
}

func TestUsingTaskMustHaveAssembly(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Acme.Build.Stamp"/>`)
	if !hasCode(doc, diag.UsingTaskMustHaveAssembly) {
		t.Errorf("UsingTaskMustHaveAssembly missing: %v", codes(doc))
	}
}

func TestUsingTaskBothAssembliesExactlyOneDiagnostic(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Acme.Build.Stamp" AssemblyName="Acme.Build" AssemblyFile="acme.dll"/>`)
	if got := countCode(doc, diag.TaskFactoryMustHaveOneAssemblyOnly); got != 1 {
		t.Errorf("TaskFactoryMustHaveOneAssemblyOnly count = %d, want 1: %v", got, codes(doc))
	}
	if hasCode(doc, diag.UsingTaskMustHaveAssembly) {
		t.Errorf("both-assemblies case also reported as missing assembly: %v", codes(doc))
	}
}

func TestTaskFactoryRequiresAssemblyFile(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="RoslynCodeTaskFactory" AssemblyName="Acme.Build">
    <Task>
      <Code>return true;</Code>
    </Task>
  </UsingTask>`)
	if !hasCode(doc, diag.TaskFactoryMustHaveAssemblyFile) {
		t.Errorf("TaskFactoryMustHaveAssemblyFile missing: %v", codes(doc))
	}
}

func TestParameterGroupRequiresFactory(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Acme.Build.Stamp" AssemblyFile="acme.dll">
    <ParameterGroup/>
  </UsingTask>`)
	if !hasCode(doc, diag.ParameterGroupMustHaveFactory) {
		t.Errorf("ParameterGroupMustHaveFactory missing: %v", codes(doc))
	}
}

func TestTaskBodyRequiresFactory(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Acme.Build.Stamp" AssemblyFile="acme.dll">
    <Task/>
  </UsingTask>`)
	if !hasCode(doc, diag.TaskBodyMustHaveFactory) {
		t.Errorf("TaskBodyMustHaveFactory missing: %v", codes(doc))
	}
}

func TestTaskFactoryRequiresBody(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="MyFactory" AssemblyFile="factory.dll"/>`)
	if !hasCode(doc, diag.TaskFactoryMustHaveBody) {
		t.Errorf("TaskFactoryMustHaveBody missing: %v", codes(doc))
	}
}

func TestRoslynFactoryRequiresCode(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="RoslynCodeTaskFactory" AssemblyFile="$(RoslynCodeTaskFactory)">
    <Task/>
  </UsingTask>`)
	if !hasCode(doc, diag.RoslynCodeTaskFactoryRequiresCodeElement) {
		t.Errorf("RoslynCodeTaskFactoryRequiresCodeElement missing: %v", codes(doc))
	}
}

func TestRoslynFactoryParameterGroupIgnored(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="RoslynCodeTaskFactory" AssemblyFile="$(RoslynCodeTaskFactory)">
    <ParameterGroup>
      <Input/>
    </ParameterGroup>
    <Task>
      <Code Type="Class">class C {}</Code>
    </Task>
  </UsingTask>`)
	if !hasCode(doc, diag.RoslynCodeTaskFactoryParameterGroupIgnored) {
		t.Errorf("RoslynCodeTaskFactoryParameterGroupIgnored missing: %v", codes(doc))
	}
}

func TestRoslynFactoryFragmentKeepsParameterGroup(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="RoslynCodeTaskFactory" AssemblyFile="$(RoslynCodeTaskFactory)">
    <ParameterGroup>
      <Input/>
    </ParameterGroup>
    <Task>
      <Code Type="Fragment">Log.LogMessage(Input);</Code>
    </Task>
  </UsingTask>`)
	if hasCode(doc, diag.RoslynCodeTaskFactoryParameterGroupIgnored) {
		t.Errorf("fragment body flagged: %v", codes(doc))
	}
}

func TestLegacyCodeTaskFactorySpelling(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" TaskFactory="CodeTaskFactory" AssemblyFile="$(RoslynCodeTaskFactory)">
    <Task/>
  </UsingTask>`)
	if !hasCode(doc, diag.RoslynCodeTaskFactoryRequiresCodeElement) {
		t.Errorf("legacy factory spelling not matched: %v", codes(doc))
	}
}

func TestInvalidTaskName(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Acme.9Bad" AssemblyFile="acme.dll"/>`)
	if !hasCode(doc, diag.InvalidTaskName) {
		t.Errorf("InvalidTaskName missing: %v", codes(doc))
	}
}

func TestTaskNameExpressionSkipped(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="$(TaskNamespace).Stamp" AssemblyFile="acme.dll"/>`)
	if hasCode(doc, diag.InvalidTaskName) || hasCode(doc, diag.FullyQualifiedTaskName) {
		t.Errorf("expression task name checked structurally: %v", codes(doc))
	}
}

func TestFullyQualifiedTaskNameNudge(t *testing.T) {
	doc := usingTaskDoc(t, `<UsingTask TaskName="Stamp" AssemblyFile="acme.dll"/>`)
	if !hasCode(doc, diag.FullyQualifiedTaskName) {
		t.Errorf("FullyQualifiedTaskName missing: %v", codes(doc))
	}
}
