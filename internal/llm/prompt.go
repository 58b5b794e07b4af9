package llm

// SystemInstruction frames the model as a radiology teacher. The section
// headers it asks for are what the UI renders; they are a prompt convention
// only and are never validated.
const SystemInstruction = `You are a highly skilled university professor of radiology and medical imaging with extensive knowledge in diagnostic imaging. Explain the provided image to your students as accurately as possible, always as plain text structured with markdown headers.`

// AnalysisInstruction is the fixed user prompt sent alongside every image.
const AnalysisInstruction = `Analyze this medical image and structure your response as follows:

### 1. Image Type & Region
- Specify imaging modality (X-ray/MRI/CT/Ultrasound/etc.)
- Identify the patient's anatomical region and positioning
- Comment on image quality and technical adequacy

### 2. Key Findings
- List primary observations systematically
- Note any abnormalities with precise descriptions
- Include measurements and densities where relevant
- Describe location, size, shape, and characteristics
- Rate severity: Normal/Mild/Moderate/Severe

### 3. Diagnostic Assessment
- Provide primary diagnosis with confidence level
- List differential diagnoses in order of likelihood
- Support each diagnosis with observed evidence from the imaging
- Note any critical or urgent findings

### 4. Patient-Friendly Explanation
- Explain the findings in simple, clear language that the patient can understand
- Avoid medical jargon or provide clear definitions
- Include visual analogies if helpful
- Address common patient concerns related to these findings

### 5. Research Context
- State whether recent literature or treatment protocols would help the reader
- Suggest 2-3 search topics that would support this analysis

Format your response using clear markdown headers and bullet points. Be concise yet thorough.`
