// Package renderer draws triangle meshes with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/shiffman/toxiclibs/internal/engine/shader"
	"github.com/shiffman/toxiclibs/internal/logger"
	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	vNormal = aNormal;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec3 uLightDir;
uniform vec3 uColor;
uniform float uAmbient;
uniform bool uUnlit;

out vec4 FragColor;

void main() {
	if (uUnlit) {
		FragColor = vec4(uColor, 1.0);
		return;
	}
	float diffuse = abs(dot(normalize(vNormal), normalize(uLightDir)));
	FragColor = vec4(uColor * (uAmbient + (1.0 - uAmbient) * diffuse), 1.0);
}
`

// Options controls how a frame is drawn.
type Options struct {
	Wireframe   bool
	ShowNormals bool
}

// Renderer owns the mesh shader and the GPU copy of one mesh.
type Renderer struct {
	width, height int
	program       *shader.Program

	meshVAO, meshVBO uint32
	meshVerts        int32
	lineVAO, lineVBO uint32
	lineVerts        int32

	uploaded     bool
	uploadedRev  uint64
	normalLength float32
}

// New initialises OpenGL and creates the renderer. It must be called after
// the GL context exists.
func New(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(1, 1, 1, 1)

	program, err := shader.NewProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	r := &Renderer{program: program}
	gl.GenVertexArrays(1, &r.meshVAO)
	gl.GenBuffers(1, &r.meshVBO)
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	setupAttribs(r.meshVAO, r.meshVBO)
	setupAttribs(r.lineVAO, r.lineVBO)

	r.Resize(width, height)
	return r, nil
}

// setupAttribs declares the interleaved position+normal layout.
func setupAttribs(vao, vbo uint32) {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, floatsPerVertex*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, floatsPerVertex*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Close frees GPU resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	gl.DeleteVertexArrays(1, &r.meshVAO)
	gl.DeleteBuffers(1, &r.meshVBO)
	gl.DeleteVertexArrays(1, &r.lineVAO)
	gl.DeleteBuffers(1, &r.lineVBO)
	r.program.Delete()
}

// Resize sets the viewport to the drawable size in pixels.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.height == 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Upload copies mesh to the GPU unless revision was already uploaded.
func (r *Renderer) Upload(mesh *geom.Mesh, revision uint64) {
	if r.uploaded && revision == r.uploadedRev {
		return
	}
	verts := MeshVertices(mesh)
	bounds := mesh.Bounds()
	if !bounds.IsEmpty() {
		r.normalLength = bounds.Size().Length() * 0.02
	}
	lines := NormalLines(mesh, r.normalLength)

	r.meshVerts = bufferVertices(r.meshVBO, verts)
	r.lineVerts = bufferVertices(r.lineVBO, lines)
	r.uploaded = true
	r.uploadedRev = revision

	logger.Debug("mesh uploaded",
		zap.Uint64("revision", revision),
		zap.Int("faces", mesh.FaceCount()),
		zap.Int32("normal_lines", r.lineVerts/2))
}

func bufferVertices(vbo uint32, data []float32) int32 {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return int32(len(data) / floatsPerVertex)
}

// Draw clears the frame and draws the uploaded mesh.
func (r *Renderer) Draw(viewProj math.Mat4, opts Options) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.meshVerts == 0 {
		return
	}

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform3f(r.program.Uniform("uLightDir"), 0.4, 1, 0.3)
	gl.Uniform1f(r.program.Uniform("uAmbient"), 0.25)

	gl.BindVertexArray(r.meshVAO)
	if opts.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		gl.Uniform1i(r.program.Uniform("uUnlit"), 1)
		gl.Uniform3f(r.program.Uniform("uColor"), 0, 0, 0)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		gl.Uniform1i(r.program.Uniform("uUnlit"), 0)
		gl.Uniform3f(r.program.Uniform("uColor"), 0.92, 0.92, 0.92)
	}
	gl.DrawArrays(gl.TRIANGLES, 0, r.meshVerts)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	if opts.ShowNormals && r.lineVerts > 0 {
		gl.Uniform1i(r.program.Uniform("uUnlit"), 1)
		gl.Uniform3f(r.program.Uniform("uColor"), 0.9, 0.2, 0.1)
		gl.BindVertexArray(r.lineVAO)
		gl.DrawArrays(gl.LINES, 0, r.lineVerts)
	}
	gl.BindVertexArray(0)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	pixels = make([]byte, r.width*r.height*4)
	if len(pixels) == 0 {
		return nil, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, r.width, r.height
}
