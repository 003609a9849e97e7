package urdf

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const armURDF = `<?xml version="1.0"?>
<robot name="arm">
  <link name="base_link"/>
  <link name="upper_arm"/>
  <link name="forearm"/>
  <link name="tool"/>
  <joint name="shoulder" type="continuous">
    <parent link="base_link"/>
    <child link="upper_arm"/>
    <origin xyz="0 0 1" rpy="0 0 0"/>
    <axis xyz="0 0 1"/>
  </joint>
  <joint name="elbow" type="revolute">
    <parent link="upper_arm"/>
    <child link="forearm"/>
    <origin xyz="1 0 0"/>
    <axis xyz="0 1 0"/>
    <limit lower="-1" upper="1" effort="10" velocity="1"/>
  </joint>
  <joint name="tool_mount" type="fixed">
    <parent link="forearm"/>
    <child link="tool"/>
    <origin xyz="0.5 0 0"/>
  </joint>
</robot>`

func mustParse(t *testing.T, doc string) *Robot {
	t.Helper()
	r, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return r
}

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}

func TestParse_Structure(t *testing.T) {
	r := mustParse(t, armURDF)
	if r.Name() != "arm" || r.Root() != "base_link" {
		t.Fatalf("Name/Root = %q/%q, want arm/base_link", r.Name(), r.Root())
	}
	if got := r.JointNames(); !reflect.DeepEqual(got, []string{"elbow", "shoulder"}) {
		t.Fatalf("JointNames = %v, want [elbow shoulder]", got)
	}
	if !r.HasJoint("shoulder") || r.HasJoint("tool_mount") || r.HasJoint("wrist") {
		t.Fatalf("HasJoint wrong for shoulder/tool_mount/wrist")
	}
	elbow, _ := r.Joint("elbow")
	if !elbow.Limited || elbow.Lower != -1 || elbow.Upper != 1 {
		t.Fatalf("elbow limits = %+v", elbow)
	}
	if got := len(r.Segments()); got != 3 {
		t.Fatalf("Segments = %d, want 3", got)
	}
}

func TestParse_CentersOnXZ(t *testing.T) {
	r := mustParse(t, armURDF)
	pos := r.LinkPositions()
	if !near(pos["base_link"], r3.Vec{X: -0.75, Z: -0.5}) {
		t.Fatalf("base_link = %v, want (-0.75,0,-0.5)", pos["base_link"])
	}
	if !near(pos["tool"], r3.Vec{X: 0.75, Z: 0.5}) {
		t.Fatalf("tool = %v, want (0.75,0,0.5)", pos["tool"])
	}
}

func TestSetJointValue_ForwardKinematics(t *testing.T) {
	r := mustParse(t, armURDF)
	if !r.SetJointValue("shoulder", math.Pi/2) {
		t.Fatalf("SetJointValue(shoulder) = false")
	}
	pos := r.LinkPositions()
	// The shoulder turns about z so the forearm swings from +x to +y.
	if !near(pos["forearm"], r3.Vec{X: -0.75, Y: 1, Z: 0.5}) {
		t.Fatalf("forearm = %v, want (-0.75,1,0.5)", pos["forearm"])
	}
	if !near(pos["tool"], r3.Vec{X: -0.75, Y: 1.5, Z: 0.5}) {
		t.Fatalf("tool = %v, want (-0.75,1.5,0.5)", pos["tool"])
	}
}

func TestSetJointValue_ClampsAndRejects(t *testing.T) {
	r := mustParse(t, armURDF)
	if !r.SetJointValue("elbow", 5) {
		t.Fatalf("SetJointValue(elbow) = false")
	}
	elbow, _ := r.Joint("elbow")
	if elbow.Value() != 1 {
		t.Fatalf("elbow = %v, want clamp to 1", elbow.Value())
	}
	r.SetJointValue("elbow", -9)
	if elbow.Value() != -1 {
		t.Fatalf("elbow = %v, want clamp to -1", elbow.Value())
	}

	if !r.SetJointValue("shoulder", 10) {
		t.Fatalf("continuous joint rejected")
	}
	shoulder, _ := r.Joint("shoulder")
	if shoulder.Value() != 10 {
		t.Fatalf("shoulder = %v, want unclamped 10", shoulder.Value())
	}

	if r.SetJointValue("tool_mount", 1) {
		t.Fatalf("fixed joint accepted a value")
	}
	if r.SetJointValue("wrist", 1) {
		t.Fatalf("unknown joint accepted a value")
	}
	if r.SetJointValue("elbow", math.NaN()) {
		t.Fatalf("NaN accepted")
	}
}

func TestParse_Prismatic(t *testing.T) {
	doc := `<robot name="slider">
  <link name="rail"/><link name="carriage"/>
  <joint name="slide" type="prismatic">
    <parent link="rail"/><child link="carriage"/>
    <limit lower="0" upper="2"/>
  </joint>
</robot>`
	r := mustParse(t, doc)
	r.SetJointValue("slide", 3)
	pos := r.LinkPositions()
	// Default axis is +x; value clamps to 2. Centring was fixed at load.
	if !near(r3.Sub(pos["carriage"], pos["rail"]), r3.Vec{X: 2}) {
		t.Fatalf("carriage offset = %v, want (2,0,0)", r3.Sub(pos["carriage"], pos["rail"]))
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"malformed":     `<robot name="x"><link name="a">`,
		"no links":      `<robot name="x"></robot>`,
		"unknown link":  `<robot><link name="a"/><joint name="j" type="fixed"><parent link="a"/><child link="b"/></joint></robot>`,
		"two roots":     `<robot><link name="a"/><link name="b"/></robot>`,
		"bad origin":    `<robot><link name="a"/><link name="b"/><joint name="j" type="fixed"><parent link="a"/><child link="b"/><origin xyz="1 2"/></joint></robot>`,
		"two parents":   `<robot><link name="a"/><link name="b"/><link name="c"/><joint name="j1" type="fixed"><parent link="a"/><child link="c"/></joint><joint name="j2" type="fixed"><parent link="b"/><child link="c"/></joint></robot>`,
		"duplicate":     `<robot><link name="a"/><link name="a"/></robot>`,
		"bad limit":     `<robot><link name="a"/><link name="b"/><joint name="j" type="revolute"><parent link="a"/><child link="b"/><limit lower="x" upper="1"/></joint></robot>`,
		"detached loop": `<robot><link name="r"/><link name="a"/><link name="b"/><joint name="j1" type="fixed"><parent link="a"/><child link="b"/></joint><joint name="j2" type="fixed"><parent link="b"/><child link="a"/></joint></robot>`,
		"unnamed joint": `<robot><link name="a"/><link name="b"/><joint type="fixed"><parent link="a"/><child link="b"/></joint></robot>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(doc)); err == nil {
				t.Fatalf("Parse accepted %s document", name)
			}
		})
	}
}

func TestParse_CycleHasNoRoot(t *testing.T) {
	doc := `<robot><link name="a"/><link name="b"/>
<joint name="j1" type="fixed"><parent link="a"/><child link="b"/></joint>
<joint name="j2" type="fixed"><parent link="b"/><child link="a"/></joint></robot>`
	if _, err := Parse(strings.NewReader(doc)); !errors.Is(err, ErrNoRoot) {
		t.Fatalf("Parse error = %v, want ErrNoRoot", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.urdf")
	if err := os.WriteFile(path, []byte(armURDF), 0o600); err != nil {
		t.Fatalf("write urdf: %v", err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if r.Name() != "arm" {
		t.Fatalf("Name = %q, want arm", r.Name())
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.urdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile(missing) error = %v, want not exist", err)
	}
}
