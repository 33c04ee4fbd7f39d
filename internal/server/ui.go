package server

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

// indexPage is the single-page chat UI. It talks to the JSON API only;
// all report HTML arrives pre-sanitized from the server.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fact-Check Agent</title>
<style>
  :root { --true: #2ecc71; --false: #e74c3c; --mixed: #f39c12; --muted: #95a5a6; }
  * { box-sizing: border-box; }
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6fa; color: #2c3e50; }
  header { background: linear-gradient(135deg, #667eea, #764ba2); color: #fff; padding: 1.5rem 2rem; }
  header h1 { margin: 0; font-size: 1.5rem; }
  header p { margin: .4rem 0 0; opacity: .9; }
  main { display: grid; grid-template-columns: 1fr 280px; gap: 1.5rem; max-width: 1100px; margin: 1.5rem auto; padding: 0 1rem; }
  .panel { background: #fff; border-radius: 10px; padding: 1.25rem; box-shadow: 0 1px 4px rgba(0,0,0,.08); }
  #history { min-height: 200px; max-height: 55vh; overflow-y: auto; margin-bottom: 1rem; }
  .msg { margin: .75rem 0; padding: .75rem 1rem; border-radius: 8px; }
  .msg.user { background: #eef2ff; }
  .msg.agent { background: #f8f9fa; border: 1px solid #eee; }
  .badge { display: inline-block; padding: .2rem .7rem; border-radius: 999px; color: #fff; font-weight: 600; font-size: .85rem; }
  textarea { width: 100%; min-height: 90px; border: 1px solid #ccc; border-radius: 8px; padding: .6rem; font: inherit; resize: vertical; }
  .row { display: flex; gap: .5rem; margin-top: .5rem; flex-wrap: wrap; align-items: center; }
  button { border: 0; border-radius: 8px; padding: .55rem 1.1rem; font: inherit; cursor: pointer; background: #667eea; color: #fff; }
  button.secondary { background: #e2e5ec; color: #2c3e50; }
  button:disabled { opacity: .5; cursor: wait; }
  details { margin: .5rem 0; }
  details summary { cursor: pointer; color: #667eea; }
  .trace-step { padding: .25rem 0 .25rem .75rem; border-left: 3px solid #e2e5ec; margin: .25rem 0; font-size: .9rem; }
  .stat { display: flex; justify-content: space-between; padding: .35rem 0; border-bottom: 1px solid #f0f0f0; font-size: .92rem; }
  .sentiment { font-size: .9rem; color: #555; margin-top: .5rem; }
  .report h3, .report h4 { margin: .6rem 0 .3rem; }
  .report ul { margin: .3rem 0; }
  .cached-note { font-size: .85rem; color: var(--muted); }
</style>
</head>
<body>
<header>
  <h1>&#128269; Fact-Check Agent</h1>
  <p>AI-powered fact-checking with detailed analysis and source verification</p>
</header>
<main>
  <section class="panel">
    <div id="history"></div>
    <textarea id="input" placeholder="Paste news text or a claim here..."></textarea>
    <div class="row">
      <button id="verify">Verify</button>
      <button id="example" class="secondary">Example</button>
      <button id="clear" class="secondary">Clear</button>
      <label class="secondary" style="margin-left:auto">
        <input type="file" id="image" accept="image/*" style="display:none">
        <button id="imageBtn" class="secondary" type="button">Verify image</button>
      </label>
    </div>
  </section>
  <aside class="panel">
    <h3>Session Statistics</h3>
    <div id="stats"></div>
  </aside>
</main>
<script>
const history = document.getElementById('history');
const input = document.getElementById('input');
let examples = [];

function badgeColor(verdict) {
  const v = (verdict || '').toLowerCase();
  if (v.includes('true') && !v.includes('false')) return 'var(--true)';
  if (v.includes('false')) return 'var(--false)';
  if (v.includes('error')) return 'var(--muted)';
  return 'var(--mixed)';
}

function addUserMsg(text) {
  const div = document.createElement('div');
  div.className = 'msg user';
  div.textContent = text;
  history.appendChild(div);
  history.scrollTop = history.scrollHeight;
}

function addAgentMsg(res) {
  const div = document.createElement('div');
  div.className = 'msg agent';

  const badge = document.createElement('span');
  badge.className = 'badge';
  badge.style.background = badgeColor(res.verdict);
  badge.textContent = res.verdict + ' · ' + Math.round(res.confidence * 100) + '%';
  div.appendChild(badge);

  if (res.cached) {
    const note = document.createElement('span');
    note.className = 'cached-note';
    note.textContent = ' cached · ' + res.elapsed_ms + 'ms';
    div.appendChild(note);
  }

  if (res.trace && res.trace.length) {
    const details = document.createElement('details');
    const summary = document.createElement('summary');
    summary.textContent = 'Agent thinking process';
    details.appendChild(summary);
    for (const step of res.trace) {
      const s = document.createElement('div');
      s.className = 'trace-step';
      s.textContent = step.name + ' — ' + step.detail;
      details.appendChild(s);
    }
    div.appendChild(details);
  }

  const report = document.createElement('div');
  report.className = 'report';
  report.innerHTML = res.report_html; // sanitized server-side
  div.appendChild(report);

  if (res.sentiment && res.sentiment.sentiment) {
    const sent = document.createElement('div');
    sent.className = 'sentiment';
    sent.textContent = 'Sentiment: ' + res.sentiment.sentiment +
      ' (' + res.sentiment.emotion + ', ' + Math.round(res.sentiment.confidence * 100) + '%)';
    div.appendChild(sent);
  }

  history.appendChild(div);
  history.scrollTop = history.scrollHeight;
  refreshStats();
}

function addError(text) {
  const div = document.createElement('div');
  div.className = 'msg agent';
  div.textContent = '❌ ' + text;
  history.appendChild(div);
}

async function verify() {
  const text = input.value.trim();
  if (!text) return;
  addUserMsg(text);
  input.value = '';
  setBusy(true);
  try {
    const resp = await fetch('/api/verify', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({text})
    });
    const body = await resp.json();
    if (!resp.ok) { addError(body.error || 'verification failed'); return; }
    addAgentMsg(body);
  } catch (e) {
    addError('request failed');
  } finally {
    setBusy(false);
  }
}

async function verifyImage(file) {
  addUserMsg('[image] ' + file.name);
  setBusy(true);
  try {
    const form = new FormData();
    form.append('image', file);
    const resp = await fetch('/api/verify/image', {method: 'POST', body: form});
    const body = await resp.json();
    if (!resp.ok) { addError(body.error || 'image verification failed'); return; }
    addAgentMsg(body);
  } catch (e) {
    addError('request failed');
  } finally {
    setBusy(false);
  }
}

function setBusy(busy) {
  for (const id of ['verify', 'example', 'imageBtn']) {
    document.getElementById(id).disabled = busy;
  }
}

async function refreshStats() {
  try {
    const resp = await fetch('/api/stats');
    const body = await resp.json();
    const rows = [];
    const c = body.session && body.session.counters ? body.session.counters : {};
    rows.push(['Checks completed', c.checks_completed || 0]);
    rows.push(['Cache hits', c.cache_hits || 0]);
    rows.push(['Image checks', c.image_checks || 0]);
    if (body.store) {
      rows.push(['Claims in memory', body.store.total_verified_claims]);
      rows.push(['Avg confidence', Math.round((body.store.average_confidence || 0) * 100) + '%']);
    }
    document.getElementById('stats').innerHTML = rows
      .map(([k, v]) => '<div class="stat"><span>' + k + '</span><strong>' + v + '</strong></div>')
      .join('');
  } catch (e) { /* stats are best-effort */ }
}

document.getElementById('verify').addEventListener('click', verify);
input.addEventListener('keydown', e => {
  if (e.key === 'Enter' && (e.ctrlKey || e.metaKey)) verify();
});
document.getElementById('clear').addEventListener('click', () => { history.innerHTML = ''; });
document.getElementById('example').addEventListener('click', async () => {
  if (!examples.length) {
    const resp = await fetch('/api/examples');
    examples = (await resp.json()).examples || [];
  }
  if (examples.length) {
    input.value = examples[Math.floor(Math.random() * examples.length)];
  }
});
document.getElementById('imageBtn').addEventListener('click', () => document.getElementById('image').click());
document.getElementById('image').addEventListener('change', e => {
  if (e.target.files.length) { verifyImage(e.target.files[0]); e.target.value = ''; }
});

refreshStats();
</script>
</body>
</html>
`
