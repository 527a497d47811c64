package transform

import "strings"

// The rust templates inspect the source snippet and only emit the blocks
// whose idioms it actually uses. The remaining targets emit complete fixed
// programs.

func phpToRust(code string) string {
	var b strings.Builder
	b.WriteString("use std::fs;\nfn main() {\n")
	if strings.Contains(code, "uploadFile") {
		b.WriteString(`    let source_path = "input.txt";
    let target_path = "uploads/input.txt";
    if fs::metadata(source_path).is_ok() {
        if fs::copy(source_path, target_path).is_ok() {
            println!("Uploaded {} to {}", source_path, target_path);
        } else {
            println!("Upload failed");
        }
    } else {
        println!("File not found: {}", source_path);
    }
`)
	}
	b.WriteString("}\n")
	return b.String()
}

func jsToRust(code string) string {
	var b strings.Builder
	b.WriteString("use tokio::time::{sleep, Duration};\n#[tokio::main]\nasync fn main() {\n")
	if strings.Contains(code, "setTimeout") {
		b.WriteString(`    tokio::spawn(async move {
        sleep(Duration::from_millis(100)).await;
        tokio::spawn(async move {
            sleep(Duration::from_millis(100)).await;
            println!("Deep");
        });
    });
    sleep(Duration::from_millis(300)).await;
`)
	}
	b.WriteString("}\n")
	return b.String()
}

func pythonToRust(code string) string {
	var b strings.Builder
	b.WriteString("use tch::{Tensor, nn};\nuse tokio::time::{sleep, Duration};\n#[tokio::main]\nasync fn main() {\n")
	if strings.Contains(code, "asyncio") {
		b.WriteString(`    tokio::spawn(async move {
        sleep(Duration::from_millis(100)).await;
        println!("Async");
    });
    sleep(Duration::from_millis(200)).await;
`)
	}
	if strings.Contains(code, "tf.matmul") {
		b.WriteString(`    let matrix1 = Tensor::of_slice(&[1.0, 2.0, 3.0, 4.0]).view([2, 2]);
    let matrix2 = Tensor::of_slice(&[5.0, 6.0, 7.0, 8.0]).view([2, 2]);
    let product = matrix1.matmul(&matrix2);
    println!("{:?}", product);
`)
	}
	b.WriteString("}\n")
	return b.String()
}

func goToRust(code string) string {
	var b strings.Builder
	b.WriteString("fn main() {\n")
	if strings.Contains(code, "log.Println") {
		b.WriteString("    println!(\"Kubernetes node started\");\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func cppToRust(code string) string {
	var b strings.Builder
	b.WriteString(`#[derive(Debug)]
struct Vector3D { x: f64, y: f64, z: f64 }
fn add_vectors(v1: Vector3D, v2: Vector3D) -> Vector3D {
    Vector3D { x: v1.x + v2.x, y: v1.y + v2.y, z: v1.z + v2.z }
}
fn main() {
`)
	if strings.Contains(code, "addVectors") {
		b.WriteString(`    let v1 = Vector3D { x: 1.0, y: 2.0, z: 3.0 };
    let v2 = Vector3D { x: 4.0, y: 5.0, z: 6.0 };
    let result = add_vectors(v1, v2);
    println!("Result: {}, {}, {}", result.x, result.y, result.z);
`)
	}
	b.WriteString("}\n")
	return b.String()
}

func phpToPython(_ string) string {
	return `import os

def upload_file(source_path, target_path):
    if os.path.exists(source_path):
        os.makedirs(os.path.dirname(target_path), exist_ok=True)
        with open(source_path, 'rb') as src, open(target_path, 'wb') as dst:
            dst.write(src.read())
        print(f"Uploaded {source_path} to {target_path}")
    else:
        print(f"File not found: {source_path}")

if __name__ == "__main__":
    upload_file("input.txt", "uploads/input.txt")
`
}

func jsToPython(_ string) string {
	return `import watchdog.events
import watchdog.observers
class Handler(watchdog.events.FileSystemEventHandler):
    def on_any_event(self, event):
        print(f"{event.src_path} changed: {event.event_type}")

if __name__ == "__main__":
    from time import sleep
    observer = watchdog.observers.Observer()
    observer.schedule(Handler(), path="input.txt")
    observer.start()
    print("Watching input.txt...")
    sleep(2)
    observer.stop()
    observer.join()
`
}

func goToPython(_ string) string {
	return "print(\"Kubernetes node started\")\n"
}

func cppToPython(_ string) string {
	return `class Vector3D:
    def __init__(self, x, y, z):
        self.x = x
        self.y = y
        self.z = z

def add_vectors(v1, v2):
    return Vector3D(v1.x + v2.x, v1.y + v2.y, v1.z + v2.z)

if __name__ == "__main__":
    v1 = Vector3D(1, 2, 3)
    v2 = Vector3D(4, 5, 6)
    result = add_vectors(v1, v2)
    print(f"Result: {result.x}, {result.y}, {result.z}")
`
}

func phpToJS(_ string) string {
	return `const fs = require('fs');
const path = require('path');
const sourcePath = 'input.txt';
const targetPath = 'uploads/input.txt';
if (fs.existsSync(sourcePath)) {
    fs.mkdirSync(path.dirname(targetPath), { recursive: true });
    fs.copyFileSync(sourcePath, targetPath);
    console.log(` + "`Uploaded ${sourcePath} to ${targetPath}`" + `);
} else {
    console.log(` + "`File not found: ${sourcePath}`" + `);
}
`
}

func pythonToJS(_ string) string {
	return `const tf = require('@tensorflow/tfjs');
async function main() {
    const matrix1 = tf.tensor2d([[1, 2], [3, 4]]);
    const matrix2 = tf.tensor2d([[5, 6], [7, 8]]);
    const product = matrix1.matMul(matrix2);
    console.log(await product.array());
}
main();
`
}

func goToJS(_ string) string {
	return "console.log(\"Kubernetes node started\");\n"
}

func cppToJS(_ string) string {
	return `class Vector3D {
    constructor(x, y, z) {
        this.x = x;
        this.y = y;
        this.z = z;
    }
}
function addVectors(v1, v2) {
    return new Vector3D(v1.x + v2.x, v1.y + v2.y, v1.z + v2.z);
}
const v1 = new Vector3D(1, 2, 3);
const v2 = new Vector3D(4, 5, 6);
const result = addVectors(v1, v2);
console.log(` + "`Result: ${result.x}, ${result.y}, ${result.z}`" + `);
`
}

func phpToJava(_ string) string {
	return `import java.io.*; import java.nio.file.*;
public class FileUploader {
    public static void main(String[] args) {
        String sourcePath = "input.txt";
        String targetPath = "uploads/input.txt";
        File source = new File(sourcePath);
        if (source.exists()) {
            try {
                Files.copy(source.toPath(), new File(targetPath).toPath(), StandardCopyOption.REPLACE_EXISTING);
                System.out.println("Uploaded " + sourcePath + " to " + targetPath);
            } catch (IOException e) {
                System.out.println("Upload failed");
            }
        } else {
            System.out.println("File not found: " + sourcePath);
        }
    }
}
`
}

func jsToJava(_ string) string {
	return `import java.nio.file.*;
import java.util.concurrent.*;
public class FileWatcher {
    public static void main(String[] args) throws Exception {
        WatchService watcher = FileSystems.getDefault().newWatchService();
        Path dir = Paths.get(".");
        dir.register(watcher, StandardWatchEventKinds.ENTRY_MODIFY);
        System.out.println("Watching input.txt...");
        ScheduledExecutorService executor = Executors.newSingleThreadScheduledExecutor();
        executor.schedule(() -> System.exit(0), 2, TimeUnit.SECONDS);
        while (true) {
            WatchKey key = watcher.take();
            for (WatchEvent<?> event : key.pollEvents()) {
                System.out.println("input.txt changed: " + event.kind());
            }
            key.reset();
        }
    }
}
`
}

func pythonToJava(_ string) string {
	return `import org.tensorflow.*;
public class MatrixMath {
    public static void main(String[] args) {
        try (Graph g = new Graph(); Session s = new Session(g)) {
            float[][] m1 = {{1, 2}, {3, 4}};
            float[][] m2 = {{5, 6}, {7, 8}};
            Tensor<?> t1 = Tensor.create(m1);
            Tensor<?> t2 = Tensor.create(m2);
            g.opBuilder("MatMul", "MatMul").addInput(t1).addInput(t2).build();
            Tensor<?> output = s.runner().fetch("MatMul").run().get(0);
            float[][] result = output.copyTo(new float[2][2]);
            System.out.println("[[" + result[0][0] + ", " + result[0][1] + "], [" + result[1][0] + ", " + result[1][1] + "]]");
        }
    }
}
`
}

func goToJava(_ string) string {
	return `public class Logger {
    public static void main(String[] args) {
        System.out.println("Kubernetes node started");
    }
}
`
}

func cppToJava(_ string) string {
	return `public class Vector3D {
    double x, y, z;
    Vector3D(double x, double y, double z) {
        this.x = x;
        this.y = y;
        this.z = z;
    }
    static Vector3D addVectors(Vector3D v1, Vector3D v2) {
        return new Vector3D(v1.x + v2.x, v1.y + v2.y, v1.z + v2.z);
    }
    public static void main(String[] args) {
        Vector3D v1 = new Vector3D(1, 2, 3);
        Vector3D v2 = new Vector3D(4, 5, 6);
        Vector3D result = addVectors(v1, v2);
        System.out.println("Result: " + result.x + ", " + result.y + ", " + result.z);
    }
}
`
}
