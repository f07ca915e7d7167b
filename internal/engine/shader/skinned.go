package shader

import "fmt"

// MaxBones is the size of the bone palette uniform.
const MaxBones = 128

// SkinnedVertex skins positions with up to four bone matrices. Bone
// matrices already include the bind pose and are in world space, so
// skinned draws skip uModel.
var SkinnedVertex = fmt.Sprintf(`#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec4 aBones;
layout (location = 4) in vec4 aWeights;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat4 uBones[%d];
uniform bool uSkinned;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    mat4 world = uModel;
    if (uSkinned) {
        float total = aWeights.x + aWeights.y + aWeights.z + aWeights.w;
        if (total > 0.0) {
            world = aWeights.x * uBones[int(aBones.x)]
                  + aWeights.y * uBones[int(aBones.y)]
                  + aWeights.z * uBones[int(aBones.z)]
                  + aWeights.w * uBones[int(aBones.w)];
        }
    }
    vec4 pos = world * vec4(aPosition, 1.0);
    vNormal = mat3(world) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * pos;
}
`, MaxBones)

// SkinnedFragment shades with one directional light and an optional texture.
const SkinnedFragment = `#version 410 core

in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform bool uHasTexture;
uniform vec4 uColor;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
    vec4 base = uColor;
    if (uHasTexture) {
        base *= texture(uTexture, vTexCoord);
    }
    float diffuse = 1.0;
    if (length(vNormal) > 0.0) {
        diffuse = max(dot(normalize(vNormal), normalize(uLightDir)), 0.0);
    }
    FragColor = vec4(base.rgb * (0.35 + 0.65 * diffuse), base.a);
}
`
