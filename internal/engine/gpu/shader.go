package gpu

var uniformNames = []string{
	"uCamera", "uStart", "uStepW", "uStepH",
	"uNX", "uNY", "uSolidCount", "uLightCount", "uBounceLimit",
	"uAmbient", "uMinProjection", "uTolerance", "uBias",
}

// computeSrc evaluates one sample per invocation. The recursion of the CPU
// tracer becomes a loop: every bounce appends value = clamp(add + mul*inner)
// to a chain that is folded from the innermost term outwards.
const computeSrc = `
#version 430
layout(local_size_x = 16, local_size_y = 16) in;

layout(std430, binding = 0) readonly buffer Solids { float solids[]; };
layout(std430, binding = 1) readonly buffer Lights { float lights[]; };
layout(std430, binding = 2) writeonly buffer Values { float values[]; };

uniform vec3 uCamera;
uniform vec3 uStart;
uniform vec3 uStepW;
uniform vec3 uStepH;
uniform int uNX;
uniform int uNY;
uniform int uSolidCount;
uniform int uLightCount;
uniform int uBounceLimit;
uniform float uAmbient;
uniform float uMinProjection;
uniform float uTolerance;
uniform float uBias;

const int SOLID_SPHERE = 0;
const int SOLID_CHECKERBOARD = 1;
const int STRIDE = 16;
const int MAX_CHAIN = 64;
const float PARALLEL_EPS = 1e-12;

float sf(int i, int k) { return solids[i*STRIDE + k]; }
vec3 sv(int i, int k) { return vec3(sf(i, k), sf(i, k+1), sf(i, k+2)); }
int stype(int i) { return int(sf(i, 0) + 0.5); }

vec3 planeNormal(int i) { return normalize(cross(sv(i, 8), sv(i, 12))); }

// Nearest hit in front of o along d; ties keep the first solid.
bool nearestHit(vec3 o, vec3 d, out int hitIdx, out vec3 hitP) {
    float dl = length(d);
    bool found = false;
    float best = 0.0;
    hitIdx = -1;
    hitP = vec3(0.0);
    if (dl == 0.0) {
        return false;
    }
    for (int i = 0; i < uSolidCount; i++) {
        float ts[2];
        int n = 0;
        if (stype(i) == SOLID_SPHERE) {
            vec3 oc = o - sv(i, 4);
            float r = sf(i, 3);
            float a = dot(d, d);
            float b = 2.0 * dot(d, oc);
            float c = dot(oc, oc) - r*r;
            float disc = b*b - 4.0*a*c;
            if (disc < 0.0) {
                continue;
            }
            float sq = sqrt(disc);
            ts[0] = (-b + sq) / (2.0*a);
            ts[1] = (-b - sq) / (2.0*a);
            n = disc == 0.0 ? 1 : 2;
        } else {
            vec3 nrm = planeNormal(i);
            float denom = dot(nrm, d);
            if (abs(denom) < PARALLEL_EPS) {
                continue;
            }
            ts[0] = dot(nrm, sv(i, 4) - o) / denom;
            n = 1;
        }
        for (int j = 0; j < n; j++) {
            vec3 p = o + d*ts[j];
            float proj = dot(p - o, d) / dl;
            if (proj < uMinProjection) {
                continue;
            }
            if (!found || proj < best) {
                found = true;
                best = proj;
                hitIdx = i;
                hitP = p;
            }
        }
    }
    return found;
}

float floorMod(float x, float m) {
    float r = x - m*floor(x/m);
    return r >= m ? 0.0 : r;
}

float cellColor(int i, vec3 p) {
    vec3 rel = p - sv(i, 4);
    float l1 = sf(i, 7);
    float l2 = sf(i, 11);
    float u = floorMod(dot(rel, sv(i, 8)) / l1, l1);
    float v = floorMod(dot(rel, sv(i, 12)) / l2, l2);
    int sum = int(floor(u)) + int(floor(v));
    return (sum % 2) == 0 ? 0.0 : 1.0;
}

vec3 normalAt(int i, vec3 p) {
    if (stype(i) == SOLID_SPHERE) {
        return normalize(p - sv(i, 4));
    }
    return planeNormal(i);
}

float lightAt(int s, vec3 p, vec3 inDir) {
    float total = 0.0;
    for (int k = 0; k < uLightCount; k++) {
        vec3 lp = vec3(lights[k*4], lights[k*4+1], lights[k*4+2]);
        vec3 toL = lp - p;
        float dist = length(toL);
        if (dist == 0.0) {
            continue;
        }
        vec3 dir = toL / dist;
        vec3 po = p + dir*uBias;
        int hi;
        vec3 hp;
        if (nearestHit(po, lp - po, hi, hp) && distance(po, hp) < distance(po, lp) - uTolerance) {
            continue;
        }
        vec3 n = normalAt(s, p);
        if (dot(n, inDir) > 0.0) {
            n = -n;
        }
        total += max(0.0, dot(n, dir)) * lights[k*4+3];
    }
    return total;
}

void main() {
    ivec2 g = ivec2(gl_GlobalInvocationID.xy);
    if (g.x >= uNX || g.y >= uNY) {
        return;
    }

    vec3 o = uCamera;
    vec3 d = uStart + uStepW*float(g.x) + uStepH*float(g.y) - uCamera;

    float adds[MAX_CHAIN];
    float muls[MAX_CHAIN];
    int n = 0;
    float inner = uAmbient;
    int depth = 1;

    for (;;) {
        int hi;
        vec3 p;
        if (!nearestHit(o, d, hi, p)) {
            inner = uAmbient;
            break;
        }
        bool sphere = stype(hi) == SOLID_SPHERE;
        float base = sphere ? sf(hi, 1) : cellColor(hi, p);
        if (depth > uBounceLimit || n == MAX_CHAIN) {
            inner = base;
            break;
        }
        float refl = sf(hi, 2);
        float light = lightAt(hi, p, d);
        if (sphere) {
            adds[n] = (1.0 - refl) * light;
            muls[n] = refl;
        } else {
            float h = refl / 2.0;
            adds[n] = 0.5*base + base*(1.0 - h)*light;
            muls[n] = h;
        }
        n++;
        if (muls[n-1] == 0.0) {
            inner = 0.0;
            break;
        }

        vec3 u = normalize(d);
        vec3 nrm = normalAt(hi, p);
        d = u - 2.0*nrm*dot(u, nrm);
        o = p;
        depth++;
    }

    float v = inner;
    for (int k = n - 1; k >= 0; k--) {
        v = clamp(adds[k] + muls[k]*v, 0.0, 1.0);
    }
    values[(uNY - 1 - g.y)*uNX + g.x] = clamp(v, 0.0, 1.0);
}
`
