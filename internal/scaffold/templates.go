package scaffold

// Fixed-template configuration artifacts written into the scaffolded project.
// Each file is fully regenerated on every run, never merged with whatever the
// scaffolding tools produced.

const tailwindConfig = `/** @type {import('tailwindcss').Config} */
export default {
  content: ["./index.html", "./src/**/*.{js,ts,jsx,tsx}"],
  theme: {
    extend: {},
  },
  plugins: [],
};
`

const globalStylesheet = `@tailwind base;
@tailwind components;
@tailwind utilities;
`

const tsconfigTemplate = `{
  "files": [],
  "references": [
    { "path": "./tsconfig.app.json" },
    { "path": "./tsconfig.node.json" }
  ],
  "compilerOptions": {
    "baseUrl": ".",
    "paths": {
      "{{.Alias}}/*": ["./{{.SourceDir}}/*"]
    }
  }
}
`

const viteConfigTemplate = `import path from "path";
import react from "@vitejs/plugin-react";
import { defineConfig } from "vite";

export default defineConfig({
  plugins: [react()],
  resolve: {
    alias: {
      "{{.Alias}}": path.resolve(__dirname, "./{{.SourceDir}}"),
    },
  },
});
`
