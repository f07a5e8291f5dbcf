package visualizer

// pageTemplate renders the force-directed family graph. Graph and Details
// are marshaled to JSON by html/template in the script context.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        body {
            margin: 0;
            font-family: Arial, sans-serif;
        }
        #graph {
            width: 100%;
            height: 100vh;
            background-color: #f5f5f5;
        }
        .node {
            stroke: #fff;
            stroke-width: 1.5px;
            cursor: pointer;
        }
        .node.selected {
            stroke: #000;
            stroke-width: 3px;
        }
        .link {
            stroke-opacity: 0.7;
        }
        .link.parent { stroke: #555; }
        .link.spouse { stroke: #c0392b; stroke-dasharray: 6 3; }
        .link.sibling { stroke: #27ae60; }
        .link.cousin { stroke: #999; stroke-dasharray: 2 3; }
        .node-label {
            font-size: 10px;
            pointer-events: none;
        }
        .controls, .details {
            position: absolute;
            top: 10px;
            background-color: rgba(255,255,255,0.9);
            padding: 10px;
            border-radius: 5px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
        .controls { left: 10px; }
        .details { right: 10px; width: 260px; display: none; }
        .details h4 { margin: 8px 0 2px; }
        .details ul { margin: 0; padding-left: 18px; }
        .details a { color: #2c3e50; cursor: pointer; }
    </style>
</head>
<body>
    <div id="graph"></div>
    <div class="controls">
        <h3>{{.Title}}</h3>
        <p>People: {{.NodeCount}}, Relationships: {{.EdgeCount}}</p>
        <div id="type-filter"></div>
        <div>
            <input id="search" type="text" placeholder="Search name">
        </div>
    </div>
    <div class="details" id="details"></div>

    <script>
        const graphData = {{.Graph}};
        const details = {{.Details}};
        const apiBase = {{.APIBase}};

        const relationTypes = ["parent", "spouse", "sibling", "cousin"];
        const genderColor = d3.scaleOrdinal()
            .domain(["male", "female", "unknown"])
            .range(["#3498db", "#e67e22", "#95a5a6"]);

        const simulation = d3.forceSimulation(graphData.nodes)
            .force("link", d3.forceLink(graphData.links).id(d => d.id)
                .distance(d => d.type === "cousin" ? 160 : 80))
            .force("charge", d3.forceManyBody().strength(-300))
            .force("center", d3.forceCenter(window.innerWidth / 2, window.innerHeight / 2));

        const svg = d3.select("#graph")
            .append("svg")
            .attr("width", "100%")
            .attr("height", "100%")
            .call(d3.zoom().on("zoom", (event) => {
                g.attr("transform", event.transform);
            }));

        svg.append("defs").append("marker")
            .attr("id", "arrow")
            .attr("viewBox", "0 -5 10 10")
            .attr("refX", 18)
            .attr("markerWidth", 6)
            .attr("markerHeight", 6)
            .attr("orient", "auto")
            .append("path")
            .attr("d", "M0,-5L10,0L0,5")
            .attr("fill", "#555");

        const g = svg.append("g");

        const link = g.append("g")
            .selectAll("line")
            .data(graphData.links)
            .enter()
            .append("line")
            .attr("class", d => "link " + d.type)
            .attr("stroke-width", 1.5)
            .attr("marker-end", d => d.type === "parent" ? "url(#arrow)" : null);

        link.append("title").text(d => d.type);

        const node = g.append("g")
            .selectAll("circle")
            .data(graphData.nodes)
            .enter()
            .append("circle")
            .attr("class", "node")
            .attr("r", 9)
            .attr("fill", d => genderColor(d.gender))
            .on("click", (event, d) => select(d.id))
            .call(d3.drag()
                .on("start", dragstarted)
                .on("drag", dragged)
                .on("end", dragended));

        node.append("title").text(d => d.lifespan ? d.label + " (" + d.lifespan + ")" : d.label);

        const label = g.append("g")
            .selectAll("text")
            .data(graphData.nodes)
            .enter()
            .append("text")
            .attr("class", "node-label")
            .attr("dx", 12)
            .attr("dy", ".35em")
            .text(d => d.label);

        simulation.on("tick", () => {
            link
                .attr("x1", d => d.source.x)
                .attr("y1", d => d.source.y)
                .attr("x2", d => d.target.x)
                .attr("y2", d => d.target.y);
            node
                .attr("cx", d => d.x)
                .attr("cy", d => d.y);
            label
                .attr("x", d => d.x)
                .attr("y", d => d.y);
        });

        // Relation type toggles
        const visibleTypes = new Set(relationTypes);
        relationTypes.forEach(type => {
            const row = d3.select("#type-filter").append("label").style("display", "block");
            row.append("input")
                .attr("type", "checkbox")
                .property("checked", true)
                .on("change", function() {
                    if (this.checked) visibleTypes.add(type); else visibleTypes.delete(type);
                    link.style("visibility", d => visibleTypes.has(d.type) ? "visible" : "hidden");
                });
            row.append("span").text(" " + type);
        });

        d3.select("#search").on("input", function() {
            const q = this.value.trim().toLowerCase();
            const match = d => q === "" || d.label.toLowerCase().includes(q);
            node.style("opacity", d => match(d) ? 1 : 0.15);
            label.style("opacity", d => match(d) ? 1 : 0.15);
        });

        function renderDetail(d) {
            const panel = d3.select("#details").style("display", "block").html("");
            panel.append("h3").text(d.person.label);
            if (d.person.lifespan) panel.append("div").text(d.person.lifespan);
            [["Parents", d.parents], ["Spouses", d.spouses], ["Siblings", d.siblings],
             ["Children", d.children], ["Cousins", d.cousins]].forEach(([title, people]) => {
                panel.append("h4").text(title);
                if (!people || people.length === 0) {
                    panel.append("div").text("none");
                    return;
                }
                const ul = panel.append("ul");
                people.forEach(p => ul.append("li").append("a")
                    .text(p.label)
                    .on("click", () => select(p.id)));
            });
        }

        function select(id) {
            node.classed("selected", d => d.id === id);
            if (details && details[id]) {
                renderDetail(details[id]);
                return;
            }
            if (apiBase) {
                fetch(apiBase + "/people/" + encodeURIComponent(id))
                    .then(r => r.ok ? r.json() : Promise.reject(r.status))
                    .then(renderDetail)
                    .catch(() => d3.select("#details").style("display", "block").text("No details for " + id));
            }
        }

        function dragstarted(event, d) {
            if (!event.active) simulation.alphaTarget(0.3).restart();
            d.fx = d.x;
            d.fy = d.y;
        }

        function dragged(event, d) {
            d.fx = event.x;
            d.fy = event.y;
        }

        function dragended(event, d) {
            if (!event.active) simulation.alphaTarget(0);
            d.fx = null;
            d.fy = null;
        }
    </script>
</body>
</html>
`
