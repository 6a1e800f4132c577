package template

// DefaultTemplate is the embedded default generation instruction.
// It uses {{variable}} placeholders for dynamic content injection.
const DefaultTemplate = `# Role
Act as a Senior Visual Communication and Photographic Post-Production Specialist at {{brand}}.

## Objective
Create an ultra-realistic mockup by applying the visual identity (logo) to the supplied photograph.

## Project Context
- Application type: {{category}}
- Specific instructions: "{{description}}"

## Inputs
1. BASE IMAGE (mime: {{base_mime}}): the photograph of the real location, vehicle, uniform or object.
2. LOGO (mime: {{logo_mime}}): the artwork to be applied.

## Technical Directives (critical)
1. ABSOLUTE PHOTOREALISM: the result must not look like a 3D render or an illustration. It must look like a photograph taken after the installation was finished.
2. SCENE PRESERVATION: keep the original lighting, photographic grain, color balance and surrounding environment intact.
3. PERSPECTIVE AND GEOMETRY: the logo must strictly follow the perspective, curvature and texture of the application surface (fabric folds on a uniform, body curves of a vehicle, the angle of a wall).
4. MATERIALITY: simulate the properties of the described material (gloss of acrylic, matte finish of ACM panels, fabric texture, glass reflections).
5. INTEGRATION: the logo must cast shadows and receive the ambient lighting correctly.

Expected output: only the final retouched image.
`
