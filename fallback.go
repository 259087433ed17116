package glshade

// DefaultFallbackSource is the fragment stage substituted for fragment
// stages that fail to compile. It paints a magenta/black checkerboard so
// the broken draw stays visible without taking the frame down.
const DefaultFallbackSource = `#version 330 core
precision mediump float;

out vec4 fallbackColor;

void main() {
    vec2 cell = floor(gl_FragCoord.xy / 8.0);
    float check = mod(cell.x + cell.y, 2.0);
    fallbackColor = mix(vec4(1.0, 0.0, 1.0, 1.0), vec4(0.0, 0.0, 0.0, 1.0), check);
}
`

// fallbackFilename labels the fallback stage in logs and errors.
// It is never looked up in a source.Provider.
const fallbackFilename = "<fallback>.frag"
