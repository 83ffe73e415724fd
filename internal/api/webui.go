package api

const webUI = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Dispensador de Agua</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}
.hidden{display:none!important}

/* Header */
.hdr{background:linear-gradient(135deg,#0ea5e9 0%,#2563eb 100%);color:#fff;padding:14px 20px;display:flex;align-items:center;justify-content:space-between;position:sticky;top:0;z-index:100}
.hdr h1{font-size:18px;font-weight:600}
.hdr-right{display:flex;align-items:center;font-size:13px;gap:6px}
.hdr-dot{width:10px;height:10px;border-radius:50%;display:inline-block;margin-left:8px}
.dot-green{background:#22c55e}.dot-red{background:#ef4444}.dot-yellow{background:#f59e0b}

/* Content */
.container{max-width:900px;margin:0 auto;padding:20px}
.card{background:#fff;border-radius:10px;padding:20px;box-shadow:0 1px 3px rgba(0,0,0,.08);margin-bottom:16px}
.card h2{font-size:16px;margin-bottom:12px}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:12px}
.product{background:#fff;border:2px solid #e5e7eb;border-radius:10px;padding:16px;cursor:pointer;text-align:center;transition:all .15s}
.product:hover{border-color:#2563eb;transform:translateY(-2px)}
.product h3{font-size:16px;margin-bottom:4px}
.product .vol{color:#666;font-size:13px}
.product .price{font-size:20px;font-weight:700;color:#2563eb;margin-top:6px}
.msg{padding:12px;border-radius:6px;font-size:14px}
.msg-info{background:#eff6ff;color:#1e40af}
.msg-success{background:#f0fdf4;color:#166534}
.msg-error{background:#fef2f2;color:#991b1b}
.form-group{margin-bottom:10px}
.form-group label{display:block;font-size:13px;font-weight:500;margin-bottom:4px}
.form-group input{width:100%;padding:8px 10px;border:1px solid #d1d5db;border-radius:6px;font-size:14px}
.btn{padding:8px 18px;border:none;border-radius:6px;font-size:14px;cursor:pointer;font-weight:500}
.btn-primary{background:#2563eb;color:#fff}
.btn-secondary{background:#e5e7eb;color:#333}
.qr{display:block;margin:16px auto;width:200px;height:200px}
.center{text-align:center}

/* Console */
.console{position:fixed;bottom:0;left:0;right:0;background:#111827;color:#e5e7eb;font-family:monospace;font-size:12px;max-height:40vh;overflow:auto;padding:8px 12px}
.console-bar{display:flex;gap:8px;align-items:center;margin-bottom:6px}
.console-bar select,.console-bar button{font-size:12px}
.log-error{color:#f87171}.log-warn{color:#fbbf24}.log-info{color:#93c5fd}.log-debug{color:#9ca3af}
</style>
</head>
<body>

<div class="hdr">
 <h1>Dispensador de Agua</h1>
 <div class="hdr-right">
  <span id="hdr-status-text">Conectando...</span>
  <span id="hdr-dot" class="hdr-dot dot-yellow"></span>
  <button class="btn btn-secondary" style="margin-left:12px;padding:4px 10px;font-size:12px" onclick="toggleConsole()">Consola</button>
 </div>
</div>

<div class="container">

 <div id="product-list-view" class="card">
  <h2>Elegí tu bebida</h2>
  <div id="product-message" class="msg msg-info">Cargando productos...</div>
  <div id="product-grid" class="grid"></div>
 </div>

 <div id="add-product-form" class="card">
  <h2>Agregar producto</h2>
  <form onsubmit="return submitProduct(event)">
   <div class="form-group"><label for="f-name">Nombre</label><input type="text" id="f-name" autocomplete="off"></div>
   <div class="form-group"><label for="f-volume">Cantidad (ml)</label><input type="text" id="f-volume" autocomplete="off"></div>
   <div class="form-group"><label for="f-price">Precio</label><input type="text" id="f-price" autocomplete="off"></div>
   <button class="btn btn-primary" type="submit">Agregar</button>
  </form>
  <div id="form-status" class="msg hidden" style="margin-top:10px"></div>
 </div>

 <div id="payment-section" class="card center hidden">
  <h2 id="payment-product">Pago</h2>
  <div id="payment-status" class="msg msg-info"></div>
  <img id="payment-qr" class="qr hidden" alt="Código QR de pago">
  <button class="btn btn-secondary" onclick="post('/api/back')">Volver</button>
 </div>

 <div id="dispensing-section" class="card center hidden">
  <h2>Dispensando...</h2>
  <p>Retirá tu bebida cuando termine.</p>
  <button class="btn btn-secondary" style="margin-top:12px" onclick="post('/api/back')">Volver</button>
 </div>

</div>

<div id="console" class="console hidden">
 <div class="console-bar">
  <strong>Consola</strong>
  <select id="log-filter" onchange="refreshLogs()">
   <option value="">todos</option>
   <option value="error">error</option>
   <option value="warn">warn</option>
   <option value="info">info</option>
   <option value="debug">debug</option>
  </select>
  <button onclick="refreshLogs()">Actualizar</button>
  <button onclick="clearLogs()">Limpiar</button>
 </div>
 <div id="log-viewer"></div>
</div>

<script>
var REGIONS = ['product-list-view', 'add-product-form', 'payment-section', 'dispensing-section'];
var lastVersion = 0;
var logTimer = null;
var lastFormStatus = '';

function esc(s) {
 var d = document.createElement('div');
 d.textContent = s == null ? '' : String(s);
 return d.innerHTML.replace(/"/g, '&quot;');
}

function setMsg(el, text, kind) {
 if (!text) { el.classList.add('hidden'); return; }
 el.textContent = text;
 el.className = 'msg msg-' + (kind || 'info');
}

// ============ Render ============
function render(s) {
 if (!s || s.version < lastVersion) return;
 lastVersion = s.version;

 REGIONS.forEach(function(id) {
  document.getElementById(id).classList.toggle('hidden', !s.regions[id]);
 });

 var grid = document.getElementById('product-grid');
 var cards = (s.list && s.list.cards) || [];
 var html = '';
 cards.forEach(function(c) {
  html += '<div class="product" data-id="' + esc(c.id) + '" onclick="selectProduct(this.dataset.id)">' +
   '<h3>' + esc(c.name) + '</h3>' +
   '<div class="vol">' + esc(c.volume) + '</div>' +
   '<div class="price">$' + esc(c.price) + '</div></div>';
 });
 grid.innerHTML = html;
 setMsg(document.getElementById('product-message'), s.list.message, s.list.kind);

 var p = s.payment || {};
 document.getElementById('payment-product').textContent = p.product_name || 'Pago';
 setMsg(document.getElementById('payment-status'), p.status, p.kind);
 var img = document.getElementById('payment-qr');
 if (p.qr_image_url) {
  img.src = p.qr_image_url;
  img.classList.remove('hidden');
 } else {
  img.removeAttribute('src');
  img.classList.add('hidden');
 }

 var f = s.form || {};
 var formStatus = (f.kind || '') + '|' + (f.status || '');
 if (formStatus !== lastFormStatus && (f.kind === 'success' || f.kind === 'error')) {
  document.getElementById('f-name').value = f.name || '';
  document.getElementById('f-volume').value = f.volume || '';
  document.getElementById('f-price').value = f.price || '';
 }
 lastFormStatus = formStatus;
 setMsg(document.getElementById('form-status'), f.status, f.kind);
}

// ============ Actions ============
function post(path, body) {
 var opts = {method: 'POST'};
 if (body) {
  opts.headers = {'Content-Type': 'application/json'};
  opts.body = JSON.stringify(body);
 }
 return fetch(path, opts).then(function(r){return r.json()}).then(render).catch(function(){});
}

function selectProduct(id) {
 post('/api/products/' + encodeURIComponent(id) + '/select');
}

function submitProduct(ev) {
 ev.preventDefault();
 post('/api/products', {
  name: document.getElementById('f-name').value,
  volume: document.getElementById('f-volume').value,
  price: document.getElementById('f-price').value
 });
 return false;
}

// ============ Live updates ============
function connect() {
 var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
 var ws = new WebSocket(proto + location.host + '/ws');
 ws.onmessage = function(ev) { render(JSON.parse(ev.data)); };
 ws.onclose = function() { setTimeout(connect, 2000); };
}

function refreshStatus() {
 fetch('/api/status').then(function(r){return r.json()}).then(function(data) {
  var b = data.backend;
  var dot = document.getElementById('hdr-dot');
  var text = document.getElementById('hdr-status-text');
  if (!b) { dot.className = 'hdr-dot dot-yellow'; text.textContent = 'Sin monitor'; return; }
  dot.className = 'hdr-dot ' + (b.connected ? 'dot-green' : 'dot-red');
  text.textContent = b.connected ? 'Servidor conectado' : 'Servidor desconectado';
 }).catch(function() {
  document.getElementById('hdr-dot').className = 'hdr-dot dot-red';
 });
}

// ============ Console ============
function toggleConsole() {
 var el = document.getElementById('console');
 el.classList.toggle('hidden');
 clearInterval(logTimer);
 if (!el.classList.contains('hidden')) {
  refreshLogs();
  logTimer = setInterval(refreshLogs, 3000);
 }
}

function refreshLogs() {
 var level = document.getElementById('log-filter').value;
 fetch('/api/logs' + (level ? '?level=' + level : '')).then(function(r){return r.json()}).then(function(data) {
  var logs = data.logs || [];
  var html = '';
  for (var i = logs.length - 1; i >= 0; i--) {
   var l = logs[i];
   var ts = l.timestamp ? new Date(l.timestamp).toLocaleTimeString() : '';
   var fields = '';
   for (var k in (l.fields || {})) fields += ' ' + esc(k) + '=' + esc(l.fields[k]);
   html += '<div><span>[' + esc(ts) + ']</span> <span class="log-' + esc(l.level) + '">' +
    esc((l.level || 'info').toUpperCase()) + '</span> ' + esc(l.message) + '<span style="color:#6b7280">' + fields + '</span></div>';
  }
  document.getElementById('log-viewer').innerHTML = html;
 });
}

function clearLogs() {
 fetch('/api/logs', {method: 'DELETE'}).then(refreshLogs);
}

// Init
connect();
post('/api/init');
refreshStatus();
setInterval(refreshStatus, 5000);
</script>
</body>
</html>`
